package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/auth"
)

func TestSignAndParse(t *testing.T) {
	m, err := auth.NewJWTManager("test-secret", "marketpulse-test")
	assert.NoError(t, err)

	token, err := m.Sign("editor", auth.RoleAdmin)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	sub, role, err := m.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "editor", sub)
	assert.Equal(t, auth.RoleAdmin, role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	m1, _ := auth.NewJWTManager("secret-one", "")
	m2, _ := auth.NewJWTManager("secret-two", "")

	token, err := m1.Sign("editor", auth.RoleAdmin)
	assert.NoError(t, err)

	_, _, err = m2.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m, _ := auth.NewJWTManager("test-secret", "")
	_, _, err := m.Parse("not-a-jwt")
	assert.Error(t, err)
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := auth.NewJWTManager("", "")
	assert.Error(t, err)
}
