package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dmserver/internal/domain"
	"dmserver/internal/store/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.Migrate(db))
	return db
}

func TestUserRepo_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	user := &domain.User{
		Nickname:       "alice",
		FullName:       "Alice Example",
		HashedPassword: "hash",
		Status:         domain.StatusOffline,
	}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.FindByNickname(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice Example", got.FullName)
	assert.Equal(t, domain.StatusOffline, got.Status)

	got.Status = domain.StatusOnline
	got.LastSeen = time.Now()
	require.NoError(t, repo.Save(ctx, got))

	online, err := repo.FindByStatus(ctx, domain.StatusOnline)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "alice", online[0].Nickname)
}

func TestUserRepo_FindByNickname_Missing(t *testing.T) {
	repo := sqlite.NewUserRepo(openTestDB(t))

	got, err := repo.FindByNickname(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_Create_DuplicateNickname(t *testing.T) {
	repo := sqlite.NewUserRepo(openTestDB(t))
	ctx := context.Background()

	u := &domain.User{Nickname: "alice", HashedPassword: "hash"}
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, &domain.User{Nickname: "alice", HashedPassword: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRoomRepo_SaveIsIdempotent(t *testing.T) {
	repo := sqlite.NewRoomRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.NewRoom("alice", "bob")))
	require.NoError(t, repo.Save(ctx, domain.NewRoom("bob", "alice")))

	fromAlice, err := repo.FindByDirectionalPair(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, fromAlice)

	fromBob, err := repo.FindByDirectionalPair(ctx, "bob", "alice")
	require.NoError(t, err)
	require.NotNil(t, fromBob)

	assert.Equal(t, fromAlice.ChatID, fromBob.ChatID)
	assert.Equal(t, "alice", fromAlice.UserA)
	assert.Equal(t, "bob", fromAlice.UserB)
}

func TestRoomRepo_FindByDirectionalPair_Missing(t *testing.T) {
	repo := sqlite.NewRoomRepo(openTestDB(t))

	got, err := repo.FindByDirectionalPair(context.Background(), "alice", "bob")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestMessageRepo_InsertionOrder(t *testing.T) {
	db := openTestDB(t)
	rooms := sqlite.NewRoomRepo(db)
	repo := sqlite.NewMessageRepo(db)
	ctx := context.Background()

	room := domain.NewRoom("alice", "bob")
	require.NoError(t, rooms.Save(ctx, room))

	base := time.Now()
	contents := []string{"first", "second", "third"}
	for i, c := range contents {
		msg := &domain.Message{
			ChatID:     room.ChatID,
			SenderID:   "alice",
			ReceiverID: "bob",
			Content:    c,
			// Earlier rows get later timestamps; order must still follow
			// insertion, not the clock.
			Timestamp: base.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Save(ctx, msg))
		assert.Equal(t, int64(i+1), msg.ID)
	}

	got, err := repo.FindByChatID(ctx, room.ChatID)
	require.NoError(t, err)
	require.Len(t, got, len(contents))
	for i, c := range contents {
		assert.Equal(t, c, got[i].Content)
	}
}
