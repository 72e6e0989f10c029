package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
)

// SubscriptionRepository defines the interface for subscription-related database operations.
type SubscriptionRepository interface {
	// GetSubscription returns mongo.ErrNoDocuments for startups that never subscribed.
	GetSubscription(ctx context.Context, startupID string) (*model.Subscription, error)
	UpsertSubscription(ctx context.Context, startupID string, tier plan.Tier) (*model.Subscription, error)
}

const subscriptionCollection = "subscriptions"

type subscriptionMongoRepository struct {
	db *mongo.Database
}

func NewSubscriptionMongoRepository(db *mongo.Database) SubscriptionRepository {
	return &subscriptionMongoRepository{db: db}
}

func (r *subscriptionMongoRepository) GetSubscription(
	ctx context.Context,
	startupID string,
) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.Collection(subscriptionCollection).FindOne(ctx, bson.M{"_id": startupID}).Decode(&subscription)
	if err != nil {
		return nil, err
	}

	return &subscription, nil
}

func (r *subscriptionMongoRepository) UpsertSubscription(
	ctx context.Context,
	startupID string,
	tier plan.Tier,
) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.Collection(subscriptionCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": startupID},
		bson.M{"$set": bson.M{"tier": tier, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&subscription)
	if err != nil {
		return nil, err
	}

	return &subscription, nil
}
