package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type InterviewMode string

const (
	InterviewOnline  InterviewMode = "ONLINE"
	InterviewOffline InterviewMode = "OFFLINE"
)

type InterviewStatus string

const (
	InterviewScheduled InterviewStatus = "SCHEDULED"
	InterviewCancelled InterviewStatus = "CANCELLED"
	InterviewCompleted InterviewStatus = "COMPLETED"
)

type Interview struct {
	ID              bson.ObjectID   `bson:"_id,omitempty"    json:"id"`
	ApplicationID   string          `bson:"application_id"   json:"application_id"`
	JobID           string          `bson:"job_id"           json:"job_id"`
	StartupID       string          `bson:"startup_id"       json:"startup_id"`
	StudentID       string          `bson:"student_id"       json:"student_id"`
	ScheduledAt     time.Time       `bson:"scheduled_at"     json:"scheduled_at"`
	DurationMinutes int             `bson:"duration_minutes" json:"duration_minutes"`
	EndsAt          time.Time       `bson:"ends_at"          json:"ends_at"`
	Mode            InterviewMode   `bson:"mode"             json:"mode"`
	Location        string          `bson:"location"         json:"location,omitempty"`
	MeetingLink     string          `bson:"meeting_link"     json:"meeting_link,omitempty"`
	Interviewer     string          `bson:"interviewer"      json:"interviewer"`
	InterviewerKey  string          `bson:"interviewer_key"  json:"-"`
	Notes           string          `bson:"notes"            json:"notes,omitempty"`
	Status          InterviewStatus `bson:"status"           json:"status"`
	CreatedAt       time.Time       `bson:"created_at"       json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"       json:"updated_at"`
}

// InterviewerKey folds an interviewer name so that "Ana Lee" and "ana lee" collide.
func InterviewerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Overlaps reports whether [start, end) intersects the interview's slot.
func (i *Interview) Overlaps(start, end time.Time) bool {
	return i.ScheduledAt.Before(end) && start.Before(i.EndsAt)
}
