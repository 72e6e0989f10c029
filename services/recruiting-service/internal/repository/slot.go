package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SlotRepository bumps a per-key document. Two transactions that bump the same
// key conflict, so a check-then-insert guarded by a bump cannot interleave.
type SlotRepository interface {
	Bump(ctx context.Context, key string) error
}

const (
	InterviewerSlotCollection = "interviewer_slots"
	JobQuotaCollection        = "job_quota_slots"
)

type slotMongoRepository struct {
	collection *mongo.Collection
}

func NewSlotMongoRepository(db *mongo.Database, collection string) SlotRepository {
	return &slotMongoRepository{collection: db.Collection(collection)}
}

func (r *slotMongoRepository) Bump(ctx context.Context, key string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": key},
		bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}
