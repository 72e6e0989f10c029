package security

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestGenerateVerificationToken_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		vt, err := GenerateVerificationToken()
		require.NoError(t, err)

		assert.Regexp(t, sixDigits, vt.Token)

		sum := sha256.Sum256([]byte(vt.Token))
		assert.Equal(t, hex.EncodeToString(sum[:]), vt.Hash)
	}
}

func TestGenerateVerificationToken_ZeroPadded(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })

	// 0x00000007 -> 7 -> "000007"
	randReader = bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x07})

	vt, err := GenerateVerificationToken()
	require.NoError(t, err)
	assert.Equal(t, "000007", vt.Token)
	assert.Equal(t, HashToken("000007"), vt.Hash)
}

func TestGenerateVerificationToken_ReducesModulo(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })

	// 0xFFFFFFFF = 4294967295 -> 967295
	randReader = bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	vt, err := GenerateVerificationToken()
	require.NoError(t, err)
	assert.Equal(t, "967295", vt.Token)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestGenerateVerificationToken_RandFailure(t *testing.T) {
	orig := randReader
	t.Cleanup(func() { randReader = orig })
	randReader = failingReader{}

	_, err := GenerateVerificationToken()
	require.Error(t, err)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("123456"), HashToken("123456"))
	assert.NotEqual(t, HashToken("123456"), HashToken("123457"))
	assert.Len(t, HashToken("000000"), 64)
}

func TestErrInvalidOrExpiredToken_Message(t *testing.T) {
	assert.Equal(t, "Invalid or expired token", ErrInvalidOrExpiredToken.Error())
}
