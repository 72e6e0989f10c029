package auth

import "github.com/golang-jwt/jwt/v5"

// Role identifies which side of the marketplace an account belongs to.
type Role string

const (
	RoleStudent Role = "student"
	RoleStartup Role = "startup"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleStartup
}

// AccessClaims are carried by access and refresh tokens.
type AccessClaims struct {
	AccountID string `json:"account_id"`
	Role      Role   `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// PasswordResetClaims are carried by password reset links.
type PasswordResetClaims struct {
	AccountID string `json:"account_id"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	JTI       string `json:"jti"`
	jwt.RegisteredClaims
}
