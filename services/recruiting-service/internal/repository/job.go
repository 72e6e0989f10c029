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

// JobRepository defines the interface for job-related database operations.
type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	ListJobsByStartup(ctx context.Context, startupID string) ([]model.Job, error)
	ListOpenJobs(ctx context.Context, limit, offset int64) ([]model.Job, error)
	CountActiveJobs(ctx context.Context, startupID string) (int64, error)

	// UpdateJobStatus changes the status of a job owned by startupID.
	UpdateJobStatus(ctx context.Context, id, startupID string, status model.JobStatus) (*model.Job, error)
}

const jobCollection = "jobs"

type jobMongoRepository struct {
	db *mongo.Database
}

func NewJobMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) JobRepository {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "startup_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := db.Collection(jobCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create job indexes")
	}

	return &jobMongoRepository{db: db}
}

func (r *jobMongoRepository) CreateJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	if job.Skills == nil {
		job.Skills = []string{}
	}

	result, err := r.db.Collection(jobCollection).InsertOne(ctx, job)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		job.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return job, nil
}

func (r *jobMongoRepository) GetJob(ctx context.Context, id string) (*model.Job, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var job model.Job
	if err := r.db.Collection(jobCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&job); err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *jobMongoRepository) ListJobsByStartup(ctx context.Context, startupID string) ([]model.Job, error) {
	return r.find(ctx, bson.M{"startup_id": startupID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
}

func (r *jobMongoRepository) ListOpenJobs(ctx context.Context, limit, offset int64) ([]model.Job, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	return r.find(ctx, bson.M{"status": model.JobStatusOpen}, opts)
}

func (r *jobMongoRepository) CountActiveJobs(ctx context.Context, startupID string) (int64, error) {
	return r.db.Collection(jobCollection).CountDocuments(ctx, bson.M{
		"startup_id": startupID,
		"status":     model.JobStatusOpen,
	})
}

func (r *jobMongoRepository) UpdateJobStatus(
	ctx context.Context,
	id, startupID string,
	status model.JobStatus,
) (*model.Job, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var job model.Job
	err = r.db.Collection(jobCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "startup_id": startupID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&job)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (r *jobMongoRepository) find(
	ctx context.Context,
	filter bson.M,
	opts *options.FindOptionsBuilder,
) ([]model.Job, error) {
	cursor, err := r.db.Collection(jobCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	jobs := []model.Job{}
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}

	return jobs, nil
}
