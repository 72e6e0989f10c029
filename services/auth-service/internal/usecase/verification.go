package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/shared/mailer"
	"github.com/wostup/pitchit-api/shared/metrics"
	"github.com/wostup/pitchit-api/shared/queue"
	"github.com/wostup/pitchit-api/shared/security"
)

// VerificationUsecase issues and checks email verification codes.
type VerificationUsecase interface {
	// ResendVerification issues a fresh code to an unverified account. It
	// succeeds silently when the email is unknown or already verified.
	ResendVerification(ctx context.Context, email string) error

	// VerifyEmail accepts a code presented together with its email address.
	VerifyEmail(ctx context.Context, email, token string) error

	// VerifyEmailByToken accepts a code presented on its own.
	VerifyEmailByToken(ctx context.Context, token string) error

	// SweepExpiredTokens removes expired codes from every account collection.
	SweepExpiredTokens(ctx context.Context) (int64, error)
}

const (
	TransportBody = "body"
	TransportPath = "path"

	emailKindVerification = "verification"
)

type verificationUsecase struct {
	accounts *AccountDirectory
	codes    *codeIssuer
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewVerificationUsecase(
	accounts *AccountDirectory,
	dispatcher queue.EmailDispatcher,
	tokenTTL time.Duration,
	logger *zerolog.Logger,
) VerificationUsecase {
	u := &verificationUsecase{
		accounts: accounts,
		logger:   logger,
		now:      time.Now,
	}
	u.codes = &codeIssuer{dispatcher: dispatcher, ttl: tokenTTL, logger: logger, now: u.clock}

	return u
}

func (u *verificationUsecase) clock() time.Time {
	return u.now()
}

func (u *verificationUsecase) ResendVerification(ctx context.Context, email string) error {
	account, repo, err := u.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}

	if account.IsVerified {
		return nil
	}

	code, err := u.codes.attach(account)
	if err != nil {
		return err
	}

	updated, err := repo.SetVerificationToken(ctx, account.ID, *account.VerificationToken, *account.VerificationTokenExpires)
	if err != nil {
		return err
	}
	if !updated {
		// Verified between the lookup and the update.
		return nil
	}

	u.codes.deliver(account, code)
	return nil
}

// VerifyEmail matches on email and code together. A blank email is rejected
// rather than widened to a code-only lookup.
func (u *verificationUsecase) VerifyEmail(ctx context.Context, email, token string) error {
	var err error
	if email = NormalizeEmail(email); email == "" {
		err = security.ErrInvalidOrExpiredToken
	} else {
		err = u.verify(ctx, email, token)
	}
	metrics.VerificationAttempts.WithLabelValues(TransportBody, successLabel(err)).Inc()
	return err
}

func (u *verificationUsecase) VerifyEmailByToken(ctx context.Context, token string) error {
	err := u.verify(ctx, "", token)
	metrics.VerificationAttempts.WithLabelValues(TransportPath, successLabel(err)).Inc()
	return err
}

func (u *verificationUsecase) verify(ctx context.Context, email, token string) error {
	if token == "" {
		return security.ErrInvalidOrExpiredToken
	}

	hash := security.HashToken(token)
	account, repo, err := u.accounts.FindByVerificationToken(ctx, email, hash)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return security.ErrInvalidOrExpiredToken
		}
		return err
	}

	now := u.now()
	if account.VerificationTokenExpires == nil || !account.VerificationTokenExpires.After(now) {
		return security.ErrInvalidOrExpiredToken
	}

	verified, err := repo.MarkVerified(ctx, account.ID, hash, now)
	if err != nil {
		return err
	}
	if !verified {
		return security.ErrInvalidOrExpiredToken
	}

	u.logger.Info().Str("account_id", account.ID.Hex()).Str("role", string(repo.Role())).Msg("email verified")
	return nil
}

func (u *verificationUsecase) SweepExpiredTokens(ctx context.Context) (int64, error) {
	var total int64
	for _, repo := range u.accounts.repos {
		n, err := repo.ClearExpiredVerificationTokens(ctx, u.now())
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

func successLabel(err error) string {
	if err != nil {
		return "false"
	}
	return "true"
}

// codeIssuer generates verification codes onto accounts and mails them.
type codeIssuer struct {
	dispatcher queue.EmailDispatcher
	ttl        time.Duration
	logger     *zerolog.Logger
	now        func() time.Time
}

// attach stores a new code hash and expiry on account and returns the plaintext code.
func (c *codeIssuer) attach(account *model.Account) (string, error) {
	token, err := security.GenerateVerificationToken()
	if err != nil {
		return "", err
	}

	expires := c.now().Add(c.ttl)
	account.VerificationToken = &token.Hash
	account.VerificationTokenExpires = &expires

	return token.Token, nil
}

// deliver hands the code to the dispatcher. It never blocks on SMTP.
func (c *codeIssuer) deliver(account *model.Account, code string) {
	email, err := mailer.VerificationEmail(account.Email, account.Name, code, c.ttl)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to render verification email")
		return
	}

	c.dispatcher.DispatchEmail(emailKindVerification, email)
}
