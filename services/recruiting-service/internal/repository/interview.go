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

// InterviewRepository defines the interface for interview-related database operations.
type InterviewRepository interface {
	CreateInterview(ctx context.Context, interview *model.Interview) (*model.Interview, error)
	GetInterview(ctx context.Context, id string) (*model.Interview, error)
	ListByStartup(ctx context.Context, startupID string) ([]model.Interview, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Interview, error)

	// HasOverlap reports whether a scheduled interview intersecting [start, end)
	// exists for the same startup interviewer or for the same student.
	HasOverlap(ctx context.Context, startupID, interviewerKey, studentID string, start, end time.Time) (bool, error)

	// TransitionStatus changes the status only if it is still from.
	TransitionStatus(ctx context.Context, id string, from, to model.InterviewStatus) (*model.Interview, error)
}

const interviewCollection = "interviews"

type interviewMongoRepository struct {
	db *mongo.Database
}

func NewInterviewMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) InterviewRepository {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "startup_id", Value: 1},
			{Key: "interviewer_key", Value: 1},
			{Key: "status", Value: 1},
			{Key: "scheduled_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}}},
		{Keys: bson.D{{Key: "application_id", Value: 1}}},
	}

	if _, err := db.Collection(interviewCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create interview indexes")
	}

	return &interviewMongoRepository{db: db}
}

func (r *interviewMongoRepository) CreateInterview(
	ctx context.Context,
	interview *model.Interview,
) (*model.Interview, error) {
	now := time.Now()
	interview.CreatedAt = now
	interview.UpdatedAt = now

	result, err := r.db.Collection(interviewCollection).InsertOne(ctx, interview)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		interview.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return interview, nil
}

func (r *interviewMongoRepository) GetInterview(ctx context.Context, id string) (*model.Interview, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var interview model.Interview
	if err := r.db.Collection(interviewCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&interview); err != nil {
		return nil, err
	}

	return &interview, nil
}

func (r *interviewMongoRepository) ListByStartup(ctx context.Context, startupID string) ([]model.Interview, error) {
	return r.find(ctx, bson.M{"startup_id": startupID})
}

func (r *interviewMongoRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Interview, error) {
	return r.find(ctx, bson.M{"student_id": studentID})
}

func (r *interviewMongoRepository) HasOverlap(
	ctx context.Context,
	startupID, interviewerKey, studentID string,
	start, end time.Time,
) (bool, error) {
	filter := bson.M{
		"status":       model.InterviewScheduled,
		"scheduled_at": bson.M{"$lt": end},
		"ends_at":      bson.M{"$gt": start},
		"$or": bson.A{
			bson.M{"startup_id": startupID, "interviewer_key": interviewerKey},
			bson.M{"student_id": studentID},
		},
	}

	n, err := r.db.Collection(interviewCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *interviewMongoRepository) TransitionStatus(
	ctx context.Context,
	id string,
	from, to model.InterviewStatus,
) (*model.Interview, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var interview model.Interview
	err = r.db.Collection(interviewCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&interview)
	if err != nil {
		return nil, err
	}

	return &interview, nil
}

func (r *interviewMongoRepository) find(ctx context.Context, filter bson.M) ([]model.Interview, error) {
	cursor, err := r.db.Collection(interviewCollection).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	interviews := []model.Interview{}
	if err := cursor.All(ctx, &interviews); err != nil {
		return nil, err
	}

	return interviews, nil
}
