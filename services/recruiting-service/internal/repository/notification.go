package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
)

// NotificationRepository defines the interface for notification-related database operations.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *model.Notification) (*model.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int64) ([]model.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)

	// MarkRead reports false when no notification with id belongs to recipientID.
	MarkRead(ctx context.Context, id, recipientID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

const notificationCollection = "notifications"

// notificationRetention bounds how long notifications are kept.
const notificationRetention = 90 * 24 * time.Hour

type notificationMongoRepository struct {
	db *mongo.Database
}

func NewNotificationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) NotificationRepository {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(notificationRetention.Seconds())), // TTL index
		},
	}

	if _, err := db.Collection(notificationCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create notification indexes")
	}

	return &notificationMongoRepository{db: db}
}

func (r *notificationMongoRepository) CreateNotification(
	ctx context.Context,
	notification *model.Notification,
) (*model.Notification, error) {
	notification.CreatedAt = time.Now()
	notification.Read = false

	result, err := r.db.Collection(notificationCollection).InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		notification.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return notification, nil
}

func (r *notificationMongoRepository) ListByRecipient(
	ctx context.Context,
	recipientID string,
	limit int64,
) ([]model.Notification, error) {
	cursor, err := r.db.Collection(notificationCollection).Find(
		ctx,
		bson.M{"recipient_id": recipientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	notifications := []model.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationMongoRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.db.Collection(notificationCollection).CountDocuments(ctx, bson.M{
		"recipient_id": recipientID,
		"read":         false,
	})
}

func (r *notificationMongoRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := r.db.Collection(notificationCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount == 1, nil
}

func (r *notificationMongoRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.db.Collection(notificationCollection).UpdateMany(
		ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}
