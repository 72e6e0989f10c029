package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type JobStatus string

const (
	JobStatusOpen   JobStatus = "OPEN"
	JobStatusClosed JobStatus = "CLOSED"
)

func (s JobStatus) Valid() bool {
	return s == JobStatusOpen || s == JobStatusClosed
}

type Job struct {
	ID             bson.ObjectID `bson:"_id,omitempty"   json:"id"`
	StartupID      string        `bson:"startup_id"      json:"startup_id"`
	Title          string        `bson:"title"           json:"title"`
	Description    string        `bson:"description"     json:"description"`
	Location       string        `bson:"location"        json:"location"`
	EmploymentType string        `bson:"employment_type" json:"employment_type"`
	Skills         []string      `bson:"skills"          json:"skills"`
	Status         JobStatus     `bson:"status"          json:"status"`
	CreatedAt      time.Time     `bson:"created_at"      json:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"      json:"updated_at"`
}
