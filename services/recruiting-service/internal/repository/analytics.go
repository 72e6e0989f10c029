package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/model"
)

// JobStatusCount is the number of applications of one job in one status.
type JobStatusCount struct {
	JobID  string                  `bson:"job_id"`
	Status model.ApplicationStatus `bson:"status"`
	Count  int64                   `bson:"count"`
}

// StageCount is the number of applications that have ever held a status.
type StageCount struct {
	Status model.ApplicationStatus `bson:"status"`
	Count  int64                   `bson:"count"`
}

// AnalyticsRepository aggregates application data for a startup.
type AnalyticsRepository interface {
	StatusCountsByJob(ctx context.Context, startupID string) ([]JobStatusCount, error)

	// StagesReached counts each application once per distinct status in its
	// history, current status included.
	StagesReached(ctx context.Context, startupID string) ([]StageCount, error)
}

type analyticsMongoRepository struct {
	db *mongo.Database
}

func NewAnalyticsMongoRepository(db *mongo.Database) AnalyticsRepository {
	return &analyticsMongoRepository{db: db}
}

func (r *analyticsMongoRepository) StatusCountsByJob(ctx context.Context, startupID string) ([]JobStatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"startup_id": startupID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"job_id": "$job_id", "status": "$status"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"job_id": "$_id.job_id",
			"status": "$_id.status",
			"count":  1,
		}}},
	}

	cursor, err := r.db.Collection(applicationCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	counts := []JobStatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *analyticsMongoRepository) StagesReached(ctx context.Context, startupID string) ([]StageCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"startup_id": startupID}}},
		{{Key: "$project", Value: bson.M{
			"stages": bson.M{"$setUnion": bson.A{
				bson.M{"$ifNull": bson.A{"$status_history.to", bson.A{}}},
				bson.A{"$status"},
			}},
		}}},
		{{Key: "$unwind", Value: "$stages"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$stages",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":    0,
			"status": "$_id",
			"count":  1,
		}}},
	}

	cursor, err := r.db.Collection(applicationCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	counts := []StageCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}

	return counts, nil
}
