package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dmserver/internal/domain"
)

func TestChatID_OrderIndependent(t *testing.T) {
	assert.Equal(t, domain.ChatID("alice", "bob"), domain.ChatID("bob", "alice"))
	assert.Equal(t, "alice:bob", domain.ChatID("bob", "alice"))
	assert.Equal(t, "alice:alice", domain.ChatID("alice", "alice"))
}

func TestNewRoom_CanonicalPair(t *testing.T) {
	r := domain.NewRoom("bob", "alice")

	assert.Equal(t, "alice", r.UserA)
	assert.Equal(t, "bob", r.UserB)
	assert.Equal(t, "alice:bob", r.ChatID)
	assert.False(t, r.CreatedAt.IsZero())
}
