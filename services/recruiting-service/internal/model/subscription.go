package model

import (
	"time"

	"github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"
)

// Subscription records a startup's plan. A startup without one is on the free tier.
type Subscription struct {
	StartupID string    `bson:"_id"        json:"startup_id"`
	Tier      plan.Tier `bson:"tier"       json:"tier"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
