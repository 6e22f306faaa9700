package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"local-chat/config"
	"local-chat/infra/database"
	"local-chat/infra/logger"
	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/infrastructure/persistence/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.Open(&config.AppConfig{
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		},
	}, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.CreateTables(model.All()...))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCreateChat_DefaultName(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()

	chat, err := store.CreateChat(ctx, "u1", "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChatName, chat.Name)
	assert.Equal(t, "u1", chat.OwnerUserID)

	got, err := store.GetChat(ctx, chat.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, got.ID)
}

func TestListChats_NewestFirstAndOwnerScoped(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return at }
		_, err := store.CreateChat(ctx, "u1", name)
		require.NoError(t, err)
	}
	_, err := store.CreateChat(ctx, "u2", "other")
	require.NoError(t, err)

	chats, err := store.ListChats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 3)
	assert.Equal(t, "third", chats[0].Name)
	assert.Equal(t, "first", chats[2].Name)

	empty, err := store.ListChats(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppendMessage_AssignsSeqInOrder(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()
	chat, err := store.CreateChat(ctx, "u1", "")
	require.NoError(t, err)

	m1, err := store.AppendMessage(ctx, chat.ID, domain.RoleUser, "hi")
	require.NoError(t, err)
	m2, err := store.AppendMessage(ctx, chat.ID, domain.RoleAssistant, "hello")
	require.NoError(t, err)

	assert.EqualValues(t, 1, m1.Seq)
	assert.EqualValues(t, 2, m2.Seq)
	assert.NotEqual(t, m1.ID, m2.ID)

	msgs, err := store.ListMessages(ctx, chat.ID, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
}

func TestAppendMessage_CreatedAtNeverDecreases(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()
	chat, err := store.CreateChat(ctx, "u1", "")
	require.NoError(t, err)

	later := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return later }
	first, err := store.AppendMessage(ctx, chat.ID, domain.RoleUser, "a")
	require.NoError(t, err)

	// clock stepped backwards
	store.now = func() time.Time { return later.Add(-time.Hour) }
	second, err := store.AppendMessage(ctx, chat.ID, domain.RoleAssistant, "b")
	require.NoError(t, err)

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.Greater(t, second.Seq, first.Seq)
}

func TestAppendMessage_UnknownChat(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)

	_, err := store.AppendMessage(context.Background(), "missing", domain.RoleUser, "hi")
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestAppendMessage_InvalidRole(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)

	_, err := store.AppendMessage(context.Background(), "c1", domain.Role("tool"), "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAppendMessage_ConcurrentAppendsAreTotallyOrdered(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()
	chat, err := store.CreateChat(ctx, "u1", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AppendMessage(ctx, chat.ID, domain.RoleUser, fmt.Sprintf("m%d", i))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	msgs, err := store.ListMessages(ctx, chat.ID, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, n)
	for i, m := range msgs {
		assert.EqualValues(t, i+1, m.Seq)
		if i > 0 {
			assert.False(t, m.CreatedAt.Before(msgs[i-1].CreatedAt))
		}
	}
}

func TestListMessages_OwnershipIsolation(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()
	chat, err := store.CreateChat(ctx, "u1", "")
	require.NoError(t, err)
	_, err = store.AppendMessage(ctx, chat.ID, domain.RoleUser, "secret")
	require.NoError(t, err)

	_, err = store.ListMessages(ctx, chat.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrChatNotFound)

	_, err = store.GetChat(ctx, chat.ID, "u2")
	assert.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestListMessages_EmptyChat(t *testing.T) {
	store := NewTranscriptStore(newTestDB(t).DB)
	ctx := context.Background()
	chat, err := store.CreateChat(ctx, "u1", "")
	require.NoError(t, err)

	msgs, err := store.ListMessages(ctx, chat.ID, "u1")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestStore_ClosedDatabaseIsUnavailable(t *testing.T) {
	db := newTestDB(t)
	store := NewTranscriptStore(db.DB)
	require.NoError(t, db.Close())

	_, err := store.CreateChat(context.Background(), "u1", "")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t).DB)
	ctx := context.Background()

	u := &domain.User{ID: uuid.NewString(), Email: " Ada@Example.com ", Name: "Ada", PasswordHash: "h"}
	require.NoError(t, repo.Save(ctx, u))
	assert.Equal(t, "ada@example.com", u.Email)

	byEmail, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	dup := &domain.User{ID: uuid.NewString(), Email: "ada@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, repo.Save(ctx, dup), domain.ErrUserAlreadyExists)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
