package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/config"
	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/services/auth-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/provider"
	"github.com/wostup/pitchit-api/shared/queue"
	"github.com/wostup/pitchit-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.Account, error)
	Login(ctx context.Context, params LoginParams) (*Tokens, error)
	Refresh(ctx context.Context, params RefreshParams) (*Tokens, error)
	GoogleLogin(ctx context.Context, params GoogleLoginParams) (*Tokens, error)
}

// ClientInfo describes where a session was opened from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// RegisterParams defines the parameters for account registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// LoginParams defines the parameters for login. An empty Role searches
// students first, then startups.
type LoginParams struct {
	Email    string
	Password string
	Role     auth.Role
	Client   ClientInfo
}

type RefreshParams struct {
	RefreshToken string
	Client       ClientInfo
}

type GoogleLoginParams struct {
	IDToken string
	Role    auth.Role
	Client  ClientInfo
}

// Tokens is the pair returned by every successful sign-in.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	AccountID    string    `json:"account_id"`
	Role         auth.Role `json:"role"`
}

var (
	ErrAccountAlreadyExists = errors.New("an account with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email not verified")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrInvalidGoogleToken   = errors.New("invalid google id token")
)

type authUsecase struct {
	accounts       *AccountDirectory
	identityRepo   repository.IdentityRepository
	sessionRepo    repository.SessionRepository
	tx             database.Transactor
	google         provider.GoogleTokenValidator
	codes          *codeIssuer
	jwtAuth        auth.JWTAuthenticator
	authServiceCfg *config.AuthServiceConfig
	logger         *zerolog.Logger
	now            func() time.Time
}

func NewAuthUsecase(
	accounts *AccountDirectory,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	tx database.Transactor,
	google provider.GoogleTokenValidator,
	dispatcher queue.EmailDispatcher,
	jwtAuth auth.JWTAuthenticator,
	authServiceCfg *config.AuthServiceConfig,
	logger *zerolog.Logger,
) AuthUsecase {
	u := &authUsecase{
		accounts:       accounts,
		identityRepo:   identityRepo,
		sessionRepo:    sessionRepo,
		tx:             tx,
		google:         google,
		jwtAuth:        jwtAuth,
		authServiceCfg: authServiceCfg,
		logger:         logger,
		now:            time.Now,
	}
	u.codes = &codeIssuer{
		dispatcher: dispatcher,
		ttl:        authServiceCfg.VerificationTokenTTL,
		logger:     logger,
		now:        func() time.Time { return u.now() },
	}

	return u
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.Account, error) {
	repo, err := u.accounts.ForRole(params.Role)
	if err != nil {
		return nil, err
	}

	email := NormalizeEmail(params.Email)
	if _, _, err := u.accounts.FindByEmail(ctx, email); err == nil {
		return nil, ErrAccountAlreadyExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Password: passwordHash,
	}

	code, err := u.codes.attach(account)
	if err != nil {
		return nil, err
	}

	// The account and its email identity are written together; the code is
	// mailed only after both commit.
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := repo.CreateAccount(ctx, account)
		if err != nil {
			return err
		}

		if err := u.identityRepo.Link(ctx, &model.Identity{
			Provider:  model.ProviderEmail,
			Subject:   created.ID.Hex(),
			AccountID: created.ID.Hex(),
			Role:      created.Role,
			Email:     created.Email,
		}); err != nil {
			return err
		}

		account = created
		return nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountAlreadyExists
		}
		return nil, err
	}

	u.codes.deliver(account, code)

	return account, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Tokens, error) {
	account, err := u.findAccount(ctx, params.Role, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	// Accounts created through Google have no local password.
	if account.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if ok, err := security.VerifyPassword(params.Password, account.Password); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if !account.IsVerified {
		return nil, ErrEmailNotVerified
	}

	if err := u.identityRepo.Touch(ctx, account.ID.Hex(), u.now()); err != nil {
		return nil, err
	}

	return u.createAuthSession(ctx, account, params.Client)
}

func (u *authUsecase) Refresh(ctx context.Context, params RefreshParams) (*Tokens, error) {
	claims := &auth.AccessClaims{}
	if err := u.jwtAuth.Verify(params.RefreshToken, u.authServiceCfg.Token.RefreshTokenSecret, claims); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	session, err := u.sessionRepo.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	if session.AccountID != claims.AccountID || session.RefreshJTI != claims.ID {
		return nil, ErrInvalidRefreshToken
	}

	now := u.now()
	session, err = u.sessionRepo.Rotate(
		ctx,
		session.ID,
		claims.ID,
		uuid.NewString(),
		now.Add(u.authServiceCfg.Token.RefreshTokenExpiresIn),
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Another refresh with the same token won the race.
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	return u.signSession(session, now)
}

func (u *authUsecase) GoogleLogin(ctx context.Context, params GoogleLoginParams) (*Tokens, error) {
	googleIdentity, err := u.google.ValidateIDToken(ctx, params.IDToken)
	if err != nil {
		u.logger.Warn().Err(err).Msg("google id token rejected")
		return nil, ErrInvalidGoogleToken
	}

	identity, err := u.identityRepo.Lookup(ctx, model.ProviderGoogle, googleIdentity.Subject)
	switch {
	case err == nil:
		repo, err := u.accounts.ForRole(identity.Role)
		if err != nil {
			return nil, err
		}

		account, err := repo.GetAccount(ctx, identity.AccountID)
		if err != nil {
			return nil, err
		}

		if err := u.identityRepo.Touch(ctx, account.ID.Hex(), u.now()); err != nil {
			return nil, err
		}

		return u.createAuthSession(ctx, account, params.Client)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, err
	}

	var account *model.Account
	err = u.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := u.findOrCreateGoogleAccount(ctx, params.Role, NormalizeEmail(googleIdentity.Email))
		if err != nil {
			return err
		}

		if err := u.identityRepo.Link(ctx, &model.Identity{
			Provider:    model.ProviderGoogle,
			Subject:     googleIdentity.Subject,
			AccountID:   found.ID.Hex(),
			Role:        found.Role,
			Email:       found.Email,
			LastLoginAt: u.now(),
		}); err != nil {
			return err
		}

		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.createAuthSession(ctx, account, params.Client)
}

func (u *authUsecase) findOrCreateGoogleAccount(
	ctx context.Context,
	role auth.Role,
	email string,
) (*model.Account, error) {
	account, repo, err := u.accounts.FindByEmail(ctx, email)
	if err == nil {
		if repo.Role() != role {
			return nil, ErrAccountAlreadyExists
		}
		if !account.IsVerified {
			return nil, ErrEmailNotVerified
		}
		return account, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	repo, err = u.accounts.ForRole(role)
	if err != nil {
		return nil, err
	}

	name, _, _ := strings.Cut(email, "@")
	account, err = repo.CreateAccount(ctx, &model.Account{
		Name:       name,
		Email:      email,
		IsVerified: true,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAccountAlreadyExists
		}
		return nil, err
	}

	return account, nil
}

func (u *authUsecase) findAccount(ctx context.Context, role auth.Role, email string) (*model.Account, error) {
	if role == "" {
		account, _, err := u.accounts.FindByEmail(ctx, email)
		return account, err
	}

	repo, err := u.accounts.ForRole(role)
	if err != nil {
		return nil, err
	}

	return repo.GetAccountByEmail(ctx, email)
}

func (u *authUsecase) createAuthSession(
	ctx context.Context,
	account *model.Account,
	client ClientInfo,
) (*Tokens, error) {
	now := u.now()
	session := &model.Session{
		ID:         uuid.NewString(),
		AccountID:  account.ID.Hex(),
		Role:       account.Role,
		RefreshJTI: uuid.NewString(),
		Client:     model.Client{IPAddress: client.IPAddress, UserAgent: client.UserAgent},
		ExpiresAt:  now.Add(u.authServiceCfg.Token.RefreshTokenExpiresIn),
	}

	if err := u.sessionRepo.Open(ctx, session); err != nil {
		return nil, err
	}

	return u.signSession(session, now)
}

// signSession mints a fresh access token and the refresh token for the
// session's current jti.
func (u *authUsecase) signSession(session *model.Session, now time.Time) (*Tokens, error) {
	accessTTL := u.authServiceCfg.Token.AccessTokenExpiresIn

	accessToken, err := u.sign(session, uuid.NewString(), u.authServiceCfg.Token.AccessTokenSecret, now, accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := u.sign(
		session,
		session.RefreshJTI,
		u.authServiceCfg.Token.RefreshTokenSecret,
		now,
		session.ExpiresAt.Sub(now),
	)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(accessTTL),
		AccountID:    session.AccountID,
		Role:         session.Role,
	}, nil
}

func (u *authUsecase) sign(
	session *model.Session,
	jti, secret string,
	now time.Time,
	ttl time.Duration,
) (string, error) {
	return u.jwtAuth.Sign(auth.AccessClaims{
		AccountID:        session.AccountID,
		Role:             session.Role,
		SessionID:        session.ID,
		RegisteredClaims: u.jwtAuth.Registered(session.AccountID, jti, now, ttl),
	}, secret)
}
