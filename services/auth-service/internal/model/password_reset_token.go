package model

import (
	"time"

	"github.com/wostup/pitchit-api/shared/auth"
)

// PasswordResetToken records one emailed reset link. The signed token is never
// stored; its jti is the document id.
type PasswordResetToken struct {
	JTI          string     `bson:"_id"`
	AccountID    string     `bson:"account_id"`
	Role         auth.Role  `bson:"role"`
	Email        string     `bson:"email"`
	ExpiresAt    time.Time  `bson:"expires_at"`
	RedeemedAt   *time.Time `bson:"redeemed_at,omitempty"`
	SupersededAt *time.Time `bson:"superseded_at,omitempty"`
	CreatedAt    time.Time  `bson:"created_at"`
}

// Spent reports whether the link was used or replaced by a newer one.
func (t *PasswordResetToken) Spent() bool {
	return t.RedeemedAt != nil || t.SupersededAt != nil
}
