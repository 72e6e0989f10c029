package payload

import "github.com/wostup/pitchit-api/services/recruiting-service/internal/plan"

type SetTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}

type SubscriptionResponse struct {
	StartupID    string            `json:"startup_id"`
	Capabilities plan.Capabilities `json:"capabilities"`
}

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
