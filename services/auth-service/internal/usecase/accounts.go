package usecase

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/services/auth-service/internal/repository"
	"github.com/wostup/pitchit-api/shared/auth"
)

// AccountDirectory searches the per-role account collections in a fixed
// order: students first, then startups.
type AccountDirectory struct {
	repos []repository.AccountRepository
}

// NewAccountDirectory creates an AccountDirectory over the given repositories.
// Their order is the lookup order.
func NewAccountDirectory(repos ...repository.AccountRepository) *AccountDirectory {
	return &AccountDirectory{repos: repos}
}

// ForRole returns the repository that stores accounts of role.
func (d *AccountDirectory) ForRole(role auth.Role) (repository.AccountRepository, error) {
	for _, repo := range d.repos {
		if repo.Role() == role {
			return repo, nil
		}
	}

	return nil, repository.ErrUnknownRole
}

// FindByEmail returns the first account holding email together with its repository.
// It returns mongo.ErrNoDocuments when no collection holds the email.
func (d *AccountDirectory) FindByEmail(
	ctx context.Context,
	email string,
) (*model.Account, repository.AccountRepository, error) {
	for _, repo := range d.repos {
		account, err := repo.GetAccountByEmail(ctx, email)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		return account, repo, nil
	}

	return nil, nil, mongo.ErrNoDocuments
}

// FindByVerificationToken returns the first account holding tokenHash.
// An empty email matches on the hash alone.
func (d *AccountDirectory) FindByVerificationToken(
	ctx context.Context,
	email, tokenHash string,
) (*model.Account, repository.AccountRepository, error) {
	for _, repo := range d.repos {
		account, err := repo.GetAccountByVerificationToken(ctx, email, tokenHash)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		return account, repo, nil
	}

	return nil, nil, mongo.ErrNoDocuments
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
