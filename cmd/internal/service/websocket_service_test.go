package service_test

import (
	"context"
	"sync"
	"testing"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/database/databasetest"
	"notehistory/cmd/internal/domain/database/repository"
	"notehistory/cmd/internal/domain/entity"
	"notehistory/cmd/internal/domain/events"
	"notehistory/cmd/internal/service"
	"notehistory/cmd/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	posts   map[string][]any
	deleted []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{posts: map[string][]any{}}
}

func (f *fakeGateway) PostToConnection(_ context.Context, connID string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[connID] = append(f.posts[connID], data)
	return nil
}

func (f *fakeGateway) DeleteConnection(_ context.Context, connID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, connID)
	return nil
}

func newWebSocketService(t *testing.T) (*service.WebSocketService, *repository.DefaultConnectionRepository, *fakeGateway, int64) {
	db := databasetest.Open(t)
	users := repository.NewUserRepository(db)
	conns := repository.NewConnectionRepository(db)
	gateway := newFakeGateway()

	user := &entity.User{Name: "Ana", Age: 30, Email: "ana@example.com"}
	require.NoError(t, users.Save(context.Background(), user))
	return service.NewWebSocketService(conns, users, gateway), conns, gateway, user.ID
}

func TestRegisterConnection(t *testing.T) {
	svc, conns, _, userID := newWebSocketService(t)
	ctx := context.Background()

	require.NoError(t, svc.RegisterConnection(ctx, userID, "conn-1"))

	ids, err := conns.FindByUserID(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"conn-1"}, ids)

	err = svc.RegisterConnection(ctx, userID+1, "conn-2")
	assert.True(t, service.IsKind(err, service.KindNotFound))

	err = svc.RegisterConnection(ctx, userID, "")
	assert.True(t, service.IsKind(err, service.KindValidation))

	svc.RemoveConnection("conn-1")
	ids, err = conns.FindByUserID(userID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDispatchReachesEveryConnection(t *testing.T) {
	svc, _, gateway, userID := newWebSocketService(t)
	ctx := context.Background()
	require.NoError(t, svc.RegisterConnection(ctx, userID, "a"))
	require.NoError(t, svc.RegisterConnection(ctx, userID, "b"))

	svc.Dispatch(ctx, userID, &events.NoteRevised{NoteVersionRef: &contract.NoteVersionRef{NoteID: 1, VersionID: 2}})

	for _, connID := range []string{"a", "b"} {
		require.Len(t, gateway.posts[connID], 1)
		msg := gateway.posts[connID][0].(*contract.OutgoingSocketMessage)
		assert.Equal(t, contract.EventNoteRevised, msg.Type)
	}
}

func TestExpireConnections(t *testing.T) {
	svc, conns, gateway, userID := newWebSocketService(t)
	ctx := context.Background()
	now := utils.NowUTC()

	require.NoError(t, svc.RegisterConnection(ctx, userID, "live"))
	require.NoError(t, conns.Save(&entity.Connection{
		ConnectionID:    "stale",
		UserID:          userID,
		ExpiresAt:       now - 1,
		LastHeartbeatAt: now,
		CreatedAt:       now,
	}))

	dropped, err := svc.ExpireConnections(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"stale"}, gateway.deleted)

	msg := gateway.posts["stale"][0].(*contract.OutgoingSocketMessage)
	assert.Equal(t, contract.EventSessionExpired, msg.Type)

	ids, err := conns.FindByUserID(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, ids)
}
