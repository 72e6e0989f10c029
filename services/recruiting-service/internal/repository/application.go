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

// ApplicationRepository defines the interface for application-related database operations.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, application *model.Application) (*model.Application, error)
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]model.Application, error)

	// TransitionStatus moves an application from one status to another only if it
	// is still in from. It returns mongo.ErrNoDocuments when the status has moved on.
	TransitionStatus(ctx context.Context, id string, change model.StatusChange) (*model.Application, error)
}

const applicationCollection = "applications"

type applicationMongoRepository struct {
	db *mongo.Database
}

func NewApplicationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) ApplicationRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "startup_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	if _, err := db.Collection(applicationCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create application indexes")
	}

	return &applicationMongoRepository{db: db}
}

func (r *applicationMongoRepository) CreateApplication(
	ctx context.Context,
	application *model.Application,
) (*model.Application, error) {
	now := time.Now()
	application.CreatedAt = now
	application.UpdatedAt = now
	if application.History == nil {
		application.History = []model.StatusChange{}
	}

	result, err := r.db.Collection(applicationCollection).InsertOne(ctx, application)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		application.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return application, nil
}

func (r *applicationMongoRepository) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var application model.Application
	err = r.db.Collection(applicationCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&application)
	if err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationMongoRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Application, error) {
	return r.find(ctx, bson.M{"student_id": studentID})
}

func (r *applicationMongoRepository) ListByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	return r.find(ctx, bson.M{"job_id": jobID})
}

func (r *applicationMongoRepository) TransitionStatus(
	ctx context.Context,
	id string,
	change model.StatusChange,
) (*model.Application, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var application model.Application
	err = r.db.Collection(applicationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID, "status": change.From},
		bson.M{
			"$set":  bson.M{"status": change.To, "updated_at": change.At},
			"$push": bson.M{"status_history": change},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&application)
	if err != nil {
		return nil, err
	}

	return &application, nil
}

func (r *applicationMongoRepository) find(ctx context.Context, filter bson.M) ([]model.Application, error) {
	cursor, err := r.db.Collection(applicationCollection).Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	applications := []model.Application{}
	if err := cursor.All(ctx, &applications); err != nil {
		return nil, err
	}

	return applications, nil
}
