package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
)

// IdentityRepository stores sign-in identities keyed by provider and subject.
type IdentityRepository interface {
	// Link stores identity. A second link for the same provider and subject
	// fails with a duplicate key error.
	Link(ctx context.Context, identity *model.Identity) error
	Lookup(ctx context.Context, provider, subject string) (*model.Identity, error)

	// Touch records a sign-in on every identity of the account.
	Touch(ctx context.Context, accountID string, at time.Time) error
}

const identityCollection = "identities"

type identityMongoRepository struct {
	collection *mongo.Collection
}

func NewIdentityMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) IdentityRepository {
	collection := db.Collection(identityCollection)

	if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}},
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to create identity indexes")
	}

	return &identityMongoRepository{collection: collection}
}

func (r *identityMongoRepository) Link(ctx context.Context, identity *model.Identity) error {
	identity.Key = model.IdentityKey(identity.Provider, identity.Subject)
	identity.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, identity)
	return err
}

func (r *identityMongoRepository) Lookup(ctx context.Context, provider, subject string) (*model.Identity, error) {
	var identity model.Identity
	err := r.collection.FindOne(ctx, bson.M{"_id": model.IdentityKey(provider, subject)}).Decode(&identity)
	if err != nil {
		return nil, err
	}

	return &identity, nil
}

func (r *identityMongoRepository) Touch(ctx context.Context, accountID string, at time.Time) error {
	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{"account_id": accountID},
		bson.M{"$set": bson.M{"last_login_at": at}},
	)
	return err
}
