package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dmserver/internal/security"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := security.NewTokenService("test-secret", time.Hour)

	token, err := svc.CreateForUser("alice")
	assert.NoError(t, err)

	claims, err := svc.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, "alice", security.Subject(claims))
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, err := security.NewTokenService("one-secret", time.Hour).CreateForUser("alice")
	assert.NoError(t, err)

	_, err = security.NewTokenService("another-secret", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := security.NewTokenService("test-secret", -time.Minute)

	token, err := svc.CreateForUser("alice")
	assert.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}
