package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ApplicationStatus string

const (
	ApplicationApplied            ApplicationStatus = "APPLIED"
	ApplicationShortlisted        ApplicationStatus = "SHORTLISTED"
	ApplicationInterviewScheduled ApplicationStatus = "INTERVIEW_SCHEDULED"
	ApplicationSelected           ApplicationStatus = "SELECTED"
	ApplicationRejected           ApplicationStatus = "REJECTED"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationApplied,
	ApplicationShortlisted,
	ApplicationInterviewScheduled,
	ApplicationSelected,
	ApplicationRejected,
}

// Trigger names what caused a status change. Some transitions are only
// reachable through interview scheduling or cancellation.
type Trigger int

const (
	TriggerManual Trigger = iota
	TriggerScheduling
	TriggerCancellation
)

type transition struct {
	from ApplicationStatus
	to   ApplicationStatus
}

var transitions = map[transition]Trigger{
	{ApplicationApplied, ApplicationShortlisted}:            TriggerManual,
	{ApplicationApplied, ApplicationRejected}:               TriggerManual,
	{ApplicationShortlisted, ApplicationRejected}:           TriggerManual,
	{ApplicationShortlisted, ApplicationInterviewScheduled}: TriggerScheduling,
	{ApplicationInterviewScheduled, ApplicationSelected}:    TriggerManual,
	{ApplicationInterviewScheduled, ApplicationRejected}:    TriggerManual,
	{ApplicationInterviewScheduled, ApplicationShortlisted}: TriggerCancellation,
}

func (s ApplicationStatus) Valid() bool {
	for _, known := range ApplicationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationSelected || s == ApplicationRejected
}

// CanTransition reports whether from -> to is allowed for trigger.
func CanTransition(from, to ApplicationStatus, trigger Trigger) bool {
	required, ok := transitions[transition{from, to}]
	return ok && required == trigger
}

type StatusChange struct {
	From ApplicationStatus `bson:"from" json:"from"`
	To   ApplicationStatus `bson:"to"   json:"to"`
	By   string            `bson:"by"   json:"by"`
	At   time.Time         `bson:"at"   json:"at"`
}

type Application struct {
	ID          bson.ObjectID     `bson:"_id,omitempty"  json:"id"`
	JobID       string            `bson:"job_id"         json:"job_id"`
	StartupID   string            `bson:"startup_id"     json:"startup_id"`
	StudentID   string            `bson:"student_id"     json:"student_id"`
	CoverLetter string            `bson:"cover_letter"   json:"cover_letter"`
	ResumeURL   string            `bson:"resume_url"     json:"resume_url"`
	ATSScore    *float64          `bson:"ats_score"      json:"ats_score,omitempty"`
	Status      ApplicationStatus `bson:"status"         json:"status"`
	History     []StatusChange    `bson:"status_history" json:"status_history"`
	CreatedAt   time.Time         `bson:"created_at"     json:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at"     json:"updated_at"`
}
