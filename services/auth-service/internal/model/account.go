package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wostup/pitchit-api/shared/auth"
)

// Account is a student or startup login. Both live in their own collection with
// the same shape; Role records which one the document was loaded from.
type Account struct {
	ID                       bson.ObjectID `bson:"_id,omitempty"`
	Name                     string        `bson:"name"`
	Email                    string        `bson:"email"`
	Password                 string        `bson:"password"`
	IsVerified               bool          `bson:"isVerified"`
	VerificationToken        *string       `bson:"verificationToken,omitempty"`
	VerificationTokenExpires *time.Time    `bson:"verificationTokenExpires,omitempty"`
	CreatedAt                time.Time     `bson:"createdAt"`
	UpdatedAt                time.Time     `bson:"updatedAt"`

	Role auth.Role `bson:"-"`
}

// HasPendingVerification reports whether a verification code is outstanding.
func (a *Account) HasPendingVerification() bool {
	return a.VerificationToken != nil && a.VerificationTokenExpires != nil
}
