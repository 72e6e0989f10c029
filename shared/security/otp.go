package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// otpModulus bounds generated codes to six decimal digits.
const otpModulus = 1_000_000

// ErrInvalidOrExpiredToken is returned for any verification code that cannot be
// accepted. Callers must not distinguish an unknown code from an expired one.
var ErrInvalidOrExpiredToken = errors.New("Invalid or expired token")

// VerificationToken holds a freshly generated one-time code and its digest.
// Only Hash may be persisted; Token is delivered to the account owner.
type VerificationToken struct {
	Token string
	Hash  string
}

// randReader is swapped in tests.
var randReader io.Reader = rand.Reader

// GenerateVerificationToken draws a 6-digit numeric code from a CSPRNG and
// returns it together with its SHA-256 hex digest.
func GenerateVerificationToken() (VerificationToken, error) {
	var buf [4]byte
	if _, err := io.ReadFull(randReader, buf[:]); err != nil {
		return VerificationToken{}, fmt.Errorf("read random bytes: %w", err)
	}

	n := binary.BigEndian.Uint32(buf[:]) % otpModulus
	token := fmt.Sprintf("%06d", n)

	return VerificationToken{
		Token: token,
		Hash:  HashToken(token),
	}, nil
}

// HashToken returns the SHA-256 hex digest of raw.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
