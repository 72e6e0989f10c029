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

// SessionRepository stores refresh sessions. Expired sessions are dropped by
// a TTL index on expires_at.
type SessionRepository interface {
	Open(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)

	// Rotate swaps the refresh jti from presented to next and extends the
	// session to expiresAt. It returns mongo.ErrNoDocuments when presented is
	// no longer the current jti.
	Rotate(ctx context.Context, id, presented, next string, expiresAt time.Time) (*model.Session, error)
}

const sessionCollection = "sessions"

type sessionMongoRepository struct {
	collection *mongo.Collection
}

func NewSessionMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) SessionRepository {
	collection := db.Collection(sessionCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "account_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create session indexes")
	}

	return &sessionMongoRepository{collection: collection}
}

func (r *sessionMongoRepository) Open(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now()
	session.Generation = 0

	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *sessionMongoRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *sessionMongoRepository) Rotate(
	ctx context.Context,
	id, presented, next string,
	expiresAt time.Time,
) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "refresh_jti": presented},
		bson.M{
			"$set": bson.M{
				"refresh_jti":     next,
				"expires_at":      expiresAt,
				"last_rotated_at": time.Now(),
			},
			"$inc": bson.M{"generation": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&session)
	if err != nil {
		return nil, err
	}

	return &session, nil
}
