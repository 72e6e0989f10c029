package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
	"github.com/wostup/pitchit-api/shared/auth"
)

// AccountRepository defines database operations on one account collection
// (students or startups).
type AccountRepository interface {
	// Role reports which kind of account this repository stores.
	Role() auth.Role

	CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)

	// GetAccountByVerificationToken finds the account holding tokenHash.
	// An empty email matches on the hash alone; only the path verify route
	// relies on that.
	GetAccountByVerificationToken(ctx context.Context, email, tokenHash string) (*model.Account, error)

	// SetVerificationToken stores a new token hash and expiry on an unverified account.
	// It reports false when no unverified account with id exists.
	SetVerificationToken(ctx context.Context, id bson.ObjectID, tokenHash string, expiresAt time.Time) (bool, error)

	// MarkVerified flips isVerified and removes the token fields, provided the
	// account still holds tokenHash unexpired at now. It reports whether it matched.
	MarkVerified(ctx context.Context, id bson.ObjectID, tokenHash string, now time.Time) (bool, error)

	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// ClearExpiredVerificationTokens removes token fields whose expiry is before now.
	ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error)
}

const (
	StudentCollection = "students"
	StartupCollection = "startups"
)

var ErrUnknownRole = errors.New("unknown account role")

type accountMongoRepository struct {
	collection *mongo.Collection
	role       auth.Role
}

// NewAccountMongoRepository creates the repository for role and ensures its indexes.
func NewAccountMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
	role auth.Role,
) AccountRepository {
	var name string
	switch role {
	case auth.RoleStudent:
		name = StudentCollection
	case auth.RoleStartup:
		name = StartupCollection
	default:
		logger.Fatal().Err(ErrUnknownRole).Str("role", string(role)).Msg("failed to create account repository")
	}

	collection := db.Collection(name)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "verificationToken", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "verificationTokenExpires", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Str("collection", name).Msg("failed to create account indexes")
	}

	return &accountMongoRepository{collection: collection, role: role}
}

func (r *accountMongoRepository) Role() auth.Role {
	return r.role
}

func (r *accountMongoRepository) CreateAccount(ctx context.Context, account *model.Account) (*model.Account, error) {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	account.Role = r.role
	return account, nil
}

func (r *accountMongoRepository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *accountMongoRepository) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *accountMongoRepository) GetAccountByVerificationToken(
	ctx context.Context,
	email, tokenHash string,
) (*model.Account, error) {
	filter := bson.M{"verificationToken": tokenHash}
	if email != "" {
		filter["email"] = email
	}

	return r.findOne(ctx, filter)
}

func (r *accountMongoRepository) SetVerificationToken(
	ctx context.Context,
	id bson.ObjectID,
	tokenHash string,
	expiresAt time.Time,
) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "isVerified": false},
		bson.M{"$set": bson.M{
			"verificationToken":        tokenHash,
			"verificationTokenExpires": expiresAt,
			"updatedAt":                time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount == 1, nil
}

func (r *accountMongoRepository) MarkVerified(
	ctx context.Context,
	id bson.ObjectID,
	tokenHash string,
	now time.Time,
) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":                      id,
			"verificationToken":        tokenHash,
			"verificationTokenExpires": bson.M{"$gt": now},
		},
		bson.M{
			"$set":   bson.M{"isVerified": true, "updatedAt": now},
			"$unset": bson.M{"verificationToken": "", "verificationTokenExpires": ""},
		},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount == 1, nil
}

func (r *accountMongoRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *accountMongoRepository) ClearExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"verificationTokenExpires": bson.M{"$lte": now}},
		bson.M{
			"$unset": bson.M{"verificationToken": "", "verificationTokenExpires": ""},
			"$set":   bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

func (r *accountMongoRepository) findOne(ctx context.Context, filter bson.M) (*model.Account, error) {
	result := r.collection.FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var account model.Account
	if err := result.Decode(&account); err != nil {
		return nil, err
	}

	account.Role = r.role
	return &account, nil
}
