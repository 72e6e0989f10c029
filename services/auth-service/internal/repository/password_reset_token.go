package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wostup/pitchit-api/services/auth-service/internal/model"
)

// PasswordResetTokenRepository stores reset link records keyed by jti.
type PasswordResetTokenRepository interface {
	// Issue stores token and supersedes every outstanding token of the same account.
	Issue(ctx context.Context, token *model.PasswordResetToken) error
	Get(ctx context.Context, jti string) (*model.PasswordResetToken, error)

	// Redeem spends an outstanding token that has not expired at at. It reports
	// false when the token was already spent or has expired.
	Redeem(ctx context.Context, jti string, at time.Time) (bool, error)
}

const passwordResetTokenCollection = "password_reset_tokens"

// resetTokenRetention keeps spent and expired records around long enough to
// answer "already used" instead of "not found".
const resetTokenRetention = 24 * time.Hour

type passwordResetTokenMongoRepository struct {
	collection *mongo.Collection
}

func NewPasswordResetTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) PasswordResetTokenRepository {
	collection := db.Collection(passwordResetTokenCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "role", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(resetTokenRetention.Seconds())),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create password reset token indexes")
	}

	return &passwordResetTokenMongoRepository{collection: collection}
}

func (r *passwordResetTokenMongoRepository) Issue(ctx context.Context, token *model.PasswordResetToken) error {
	now := time.Now()

	_, err := r.collection.UpdateMany(
		ctx,
		bson.M{
			"account_id":    token.AccountID,
			"role":          token.Role,
			"redeemed_at":   bson.M{"$exists": false},
			"superseded_at": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"superseded_at": now}},
	)
	if err != nil {
		return err
	}

	token.CreatedAt = now
	token.RedeemedAt = nil
	token.SupersededAt = nil

	_, err = r.collection.InsertOne(ctx, token)
	return err
}

func (r *passwordResetTokenMongoRepository) Get(ctx context.Context, jti string) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	if err := r.collection.FindOne(ctx, bson.M{"_id": jti}).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *passwordResetTokenMongoRepository) Redeem(ctx context.Context, jti string, at time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":           jti,
			"expires_at":    bson.M{"$gt": at},
			"redeemed_at":   bson.M{"$exists": false},
			"superseded_at": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{"redeemed_at": at}},
	)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}
