package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type NotificationType string

const (
	NotificationApplicationReceived NotificationType = "APPLICATION_RECEIVED"
	NotificationStatusChanged       NotificationType = "APPLICATION_STATUS_CHANGED"
	NotificationInterviewScheduled  NotificationType = "INTERVIEW_SCHEDULED"
	NotificationInterviewCancelled  NotificationType = "INTERVIEW_CANCELLED"
)

type Notification struct {
	ID            bson.ObjectID     `bson:"_id,omitempty"  json:"id"`
	RecipientID   string            `bson:"recipient_id"   json:"recipient_id"`
	RecipientRole string            `bson:"recipient_role" json:"recipient_role"`
	Type          NotificationType  `bson:"type"           json:"type"`
	Title         string            `bson:"title"          json:"title"`
	Body          string            `bson:"body"           json:"body"`
	Data          map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read          bool              `bson:"read"           json:"read"`
	CreatedAt     time.Time         `bson:"created_at"     json:"created_at"`
}
