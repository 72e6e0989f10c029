package model

import (
	"time"

	"github.com/wostup/pitchit-api/shared/auth"
)

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Identity links an account to one way of signing in. For ProviderEmail the
// subject is the account id; for Google it is the "sub" of the ID token.
type Identity struct {
	Key         string    `bson:"_id"`
	Provider    string    `bson:"provider"`
	Subject     string    `bson:"subject"`
	AccountID   string    `bson:"account_id"`
	Role        auth.Role `bson:"role"`
	Email       string    `bson:"email"`
	LastLoginAt time.Time `bson:"last_login_at,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// IdentityKey is the document id of the identity for provider and subject.
func IdentityKey(provider, subject string) string {
	return provider + ":" + subject
}
