package provider

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
	ErrGoogleEmailUnverified = errors.New("google account email is not verified")
)

// GoogleIdentity is the subset of a validated Google ID token used for sign-in.
type GoogleIdentity struct {
	Subject string
	Email   string
}

// GoogleTokenValidator validates Google ID tokens.
type GoogleTokenValidator interface {
	ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// GoogleOAuthProvider validates ID tokens against Google's tokeninfo endpoint.
type GoogleOAuthProvider struct {
	clientID   string
	httpClient *http.Client
}

// NewGoogleOAuthProvider creates a provider accepting tokens issued for clientID.
func NewGoogleOAuthProvider(clientID string, httpClient *http.Client) *GoogleOAuthProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleOAuthProvider{clientID: clientID, httpClient: httpClient}
}

func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(p.httpClient))
	if err != nil {
		return nil, err
	}

	tokenInfo, err := oauth2Service.Tokeninfo().IdToken(idToken).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	if !tokenInfo.VerifiedEmail {
		return nil, ErrGoogleEmailUnverified
	}

	return &GoogleIdentity{
		Subject: tokenInfo.UserId,
		Email:   tokenInfo.Email,
	}, nil
}
