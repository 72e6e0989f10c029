package usecase

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/config"
	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/services/auth-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/auth"
	"github.com/wostup/pitchit-api/shared/mailer"
	"github.com/wostup/pitchit-api/shared/queue"
	"github.com/wostup/pitchit-api/shared/security"
)

// PasswordResetUsecase issues single-use reset links and redeems them.
type PasswordResetUsecase interface {
	// RequestPasswordReset emails a reset link if a password account exists for
	// email. Unknown addresses succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword resets the account password using the signed reset token.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken checks that the signed reset token can still be used.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

type passwordResetUsecase struct {
	accounts       *AccountDirectory
	tokenRepo      repository.PasswordResetTokenRepository
	jwtAuth        auth.JWTAuthenticator
	dispatcher     queue.EmailDispatcher
	authServiceCfg *config.AuthServiceConfig
	logger         *zerolog.Logger
	now            func() time.Time
}

var (
	ErrTokenNotFound    = errors.New("password reset token not found")
	ErrTokenAlreadyUsed = errors.New("password reset token has already been used")
	ErrTokenExpired     = errors.New("password reset token has expired")
	ErrInvalidToken     = errors.New("invalid password reset token")
)

const emailKindPasswordReset = "password_reset"

func NewPasswordResetUsecase(
	accounts *AccountDirectory,
	tokenRepo repository.PasswordResetTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	dispatcher queue.EmailDispatcher,
	authServiceCfg *config.AuthServiceConfig,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		accounts:       accounts,
		tokenRepo:      tokenRepo,
		jwtAuth:        jwtAuth,
		dispatcher:     dispatcher,
		authServiceCfg: authServiceCfg,
		logger:         logger,
		now:            time.Now,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	account, _, err := u.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Same answer as for a known address.
			return nil
		}
		return err
	}

	// Google-only accounts have no password to reset.
	if account.Password == "" {
		return nil
	}

	tokenStr, jti, expiresAt, err := u.generatePasswordResetToken(account)
	if err != nil {
		return err
	}

	if err := u.tokenRepo.Issue(ctx, &model.PasswordResetToken{
		JTI:       jti,
		AccountID: account.ID.Hex(),
		Role:      account.Role,
		Email:     account.Email,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}

	link := u.authServiceCfg.PasswordResetURL() + "?token=" + url.QueryEscape(tokenStr)
	message, err := mailer.PasswordResetEmail(account.Email, link, u.authServiceCfg.Token.PasswordResetTokenExpiresIn)
	if err != nil {
		return err
	}

	u.dispatcher.DispatchEmail(emailKindPasswordReset, message)
	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, resetToken, err := u.loadToken(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	// Spend the link before touching the password so that two concurrent
	// requests cannot both succeed.
	redeemed, err := u.tokenRepo.Redeem(ctx, resetToken.JTI, u.now())
	if err != nil {
		return err
	}
	if !redeemed {
		return ErrTokenAlreadyUsed
	}

	repo, err := u.accounts.ForRole(claims.Role)
	if err != nil {
		return ErrInvalidToken
	}

	if err := repo.UpdatePassword(ctx, resetToken.AccountID, passwordHash); err != nil {
		return err
	}

	u.logger.Info().
		Str("account_id", resetToken.AccountID).
		Str("role", string(resetToken.Role)).
		Msg("password reset")
	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	_, _, err := u.loadToken(ctx, token)
	return err
}

func (u *passwordResetUsecase) loadToken(
	ctx context.Context,
	token string,
) (*auth.PasswordResetClaims, *model.PasswordResetToken, error) {
	claims := &auth.PasswordResetClaims{}
	if err := u.jwtAuth.Verify(token, u.authServiceCfg.Token.PasswordResetTokenSecret, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, ErrTokenExpired
		}
		return nil, nil, ErrInvalidToken
	}

	resetToken, err := u.tokenRepo.Get(ctx, claims.JTI)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrTokenNotFound
		}
		return nil, nil, err
	}

	if resetToken.AccountID != claims.AccountID || resetToken.Role != claims.Role {
		return nil, nil, ErrInvalidToken
	}

	if resetToken.Spent() {
		return nil, nil, ErrTokenAlreadyUsed
	}

	if !u.now().Before(resetToken.ExpiresAt) {
		return nil, nil, ErrTokenExpired
	}

	return claims, resetToken, nil
}

// generatePasswordResetToken signs a reset JWT whose jti keys the stored record.
func (u *passwordResetUsecase) generatePasswordResetToken(
	account *model.Account,
) (string, string, time.Time, error) {
	jti := uuid.NewString()
	now := u.now()
	ttl := u.authServiceCfg.Token.PasswordResetTokenExpiresIn

	claims := auth.PasswordResetClaims{
		AccountID:        account.ID.Hex(),
		Role:             account.Role,
		Email:            account.Email,
		JTI:              jti,
		RegisteredClaims: u.jwtAuth.Registered(account.ID.Hex(), jti, now, ttl),
	}

	tokenStr, err := u.jwtAuth.Sign(claims, u.authServiceCfg.Token.PasswordResetTokenSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}

	return tokenStr, jti, now.Add(ttl), nil
}
