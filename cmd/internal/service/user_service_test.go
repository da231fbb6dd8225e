package service_test

import (
	"context"
	"testing"
	"time"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/database/databasetest"
	"notehistory/cmd/internal/domain/database/repository"
	"notehistory/cmd/internal/service"
	"notehistory/cmd/internal/utils/validators"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type terminatedSessions chan int64

func (s terminatedSessions) TerminateUserConnections(_ context.Context, userID int64) {
	s <- userID
}

func newUserService(t *testing.T) (*service.UserService, *service.DefaultNoteService, terminatedSessions) {
	db := databasetest.Open(t)
	users := repository.NewUserRepository(db)
	validate := validators.New()
	sessions := make(terminatedSessions, 4)

	notes := service.NewNoteService(repository.NewNoteRepository(db), repository.NewVersionRepository(db),
		users, repository.NewTransactor(db), nil, validate, 3)
	return service.NewUserService(users, sessions, validate), notes, sessions
}

func TestCreateAndGetUser(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "  Ana  ", Age: ptr(30), Email: "ana@example.com"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	user, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, 30, user.Age)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = svc.GetUser(ctx, created.ID+1)
	assert.True(t, service.IsKind(err, service.KindNotFound))
}

func TestCreateUserValidation(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Ana", Age: ptr(30), Email: "not-an-email"})
	require.True(t, service.IsKind(err, service.KindValidation))

	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Ana", Email: "ana@example.com"})
	assert.True(t, service.IsKind(err, service.KindValidation))

	_, err = svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Ana", Age: ptr(-1), Email: "ana@example.com"})
	assert.True(t, service.IsKind(err, service.KindValidation))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Ana", Age: ptr(30), Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Bia", Age: ptr(20), Email: "ana@example.com"})
	assert.True(t, service.IsKind(err, service.KindConstraint))
}

func TestListUsersWithCounts(t *testing.T) {
	svc, notes, _ := newUserService(t)
	ctx := context.Background()

	writer, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Writer", Age: ptr(30), Email: "w@example.com"})
	require.NoError(t, err)
	idle, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Idle", Age: ptr(40), Email: "i@example.com"})
	require.NoError(t, err)

	created, err := notes.CreateNote(ctx, &contract.CreateNoteRequest{UserID: writer.ID, Title: "t", Content: "c"})
	require.NoError(t, err)
	_, err = notes.ReviseNote(ctx, created.NoteID, &contract.ReviseNoteRequest{Content: ptr("c2")})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx, &contract.PageRequest{Page: 1, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, writer.ID, users[0].ID)
	assert.EqualValues(t, 1, users[0].NotesCount)
	assert.EqualValues(t, 2, users[0].VersionsCount)
	assert.Equal(t, idle.ID, users[1].ID)
	assert.Zero(t, users[1].NotesCount)

	users, err = svc.ListUsers(ctx, &contract.PageRequest{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = svc.ListUsers(ctx, &contract.PageRequest{Page: 1, PageSize: 0})
	assert.True(t, service.IsKind(err, service.KindValidation))
}

func TestDeleteUserCascadesAndDropsSessions(t *testing.T) {
	svc, notes, sessions := newUserService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &contract.CreateUserRequest{Name: "Ana", Age: ptr(30), Email: "ana@example.com"})
	require.NoError(t, err)
	created, err := notes.CreateNote(ctx, &contract.CreateNoteRequest{UserID: user.ID, Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = notes.GetNote(ctx, created.NoteID)
	assert.True(t, service.IsKind(err, service.KindNotFound))

	select {
	case id := <-sessions:
		assert.Equal(t, user.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("sessions were not terminated")
	}

	err = svc.DeleteUser(ctx, user.ID)
	assert.True(t, service.IsKind(err, service.KindNotFound))
}
