package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerPayload struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=student startup"`
}

func TestStruct_Valid(t *testing.T) {
	v := New()
	fields, err := v.Struct(registerPayload{Email: "a@b.co", Password: "longenough", Role: "student"})
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestStruct_TranslatedFieldMessages(t *testing.T) {
	v := New()
	fields, err := v.Struct(registerPayload{Email: "nope", Password: "short", Role: "admin"})
	require.NoError(t, err)

	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
	require.Contains(t, fields, "role")
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "password must be at least 8 characters in length", fields["password"])
}

func TestStruct_NotAStruct(t *testing.T) {
	v := New()
	_, err := v.Struct("string")
	assert.Error(t, err)
}
