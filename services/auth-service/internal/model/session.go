package model

import (
	"time"

	"github.com/wostup/pitchit-api/shared/auth"
)

// Client is where a session was opened from.
type Client struct {
	IPAddress string `bson:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`
}

// Session backs a refresh token chain. Only the jti of the newest refresh
// token is accepted; every rotation bumps Generation.
type Session struct {
	ID            string    `bson:"_id"`
	AccountID     string    `bson:"account_id"`
	Role          auth.Role `bson:"role"`
	RefreshJTI    string    `bson:"refresh_jti"`
	Generation    int       `bson:"generation"`
	Client        Client    `bson:"client"`
	ExpiresAt     time.Time `bson:"expires_at"`
	CreatedAt     time.Time `bson:"created_at"`
	LastRotatedAt time.Time `bson:"last_rotated_at,omitempty"`
}
