package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notehistory/cmd/internal/contract"
	"notehistory/cmd/internal/domain/database/databasetest"
	"notehistory/cmd/internal/domain/database/repository"
	"notehistory/cmd/internal/http/handler"
	"notehistory/cmd/internal/infrastructure/aws/websocket"
	"notehistory/cmd/internal/service"
	"notehistory/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *echo.Echo {
	db := databasetest.Open(t)
	validate := validators.New()

	noteRepo := repository.NewNoteRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	wsService := service.NewWebSocketService(connRepo, userRepo, websocket.NopGatewayClient{})
	userService := service.NewUserService(userRepo, wsService, validate)
	noteService := service.NewNoteService(noteRepo, versionRepo, userRepo, repository.NewTransactor(db),
		nil, validate, 3)
	exportService := service.NewExportService(noteRepo, versionRepo, nil)

	e := echo.New()
	handler.Register(e, &handler.Routes{
		Notes:       handler.NewNoteDefault(noteService, exportService),
		Users:       handler.NewUserDefault(userService),
		WebSocket:   handler.NewWSDefault(wsService),
		Maintenance: handler.NewMaintenanceDefault(noteService),
	})
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createUser(t *testing.T, e *echo.Echo, email string) int64 {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/users", fmt.Sprintf(`{"name":"Ana","age":30,"email":%q}`, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[contract.CreateUserResponse](t, rec).ID
}

func createNote(t *testing.T, e *echo.Echo, userID int64, title, content string) *contract.CreateNoteResponse {
	t.Helper()
	body := fmt.Sprintf(`{"userId":%d,"title":%q,"content":%q}`, userID, title, content)
	rec := do(t, e, http.MethodPost, "/api/notes", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[contract.CreateNoteResponse](t, rec)
	return &created
}

func TestNoteLifecycleOverHTTP(t *testing.T) {
	e := newServer(t)
	userID := createUser(t, e, "ana@example.com")
	created := createNote(t, e, userID, "Draft", "v1")
	notePath := fmt.Sprintf("/api/notes/%d", created.NoteID)

	rec := do(t, e, http.MethodPatch, notePath, `{"content":"v2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	revised := decode[contract.NoteVersionRef](t, rec)

	rec = do(t, e, http.MethodGet, notePath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	note := decode[contract.NoteResponse](t, rec)
	assert.Equal(t, "Draft", *note.Title)
	assert.Equal(t, "v2", *note.Content)
	assert.Equal(t, revised.VersionID, *note.CurrentVersionID)

	rec = do(t, e, http.MethodGet, notePath+"/versions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[map[string][]contract.VersionResponse](t, rec)
	require.Len(t, history["versions"], 2)
	assert.Equal(t, created.Version.ID, history["versions"][0].ID)

	rec = do(t, e, http.MethodPost, fmt.Sprintf("%s/restore/%d", notePath, created.Version.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, fmt.Sprintf("%s/versions/%d", notePath, created.Version.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", decode[contract.VersionResponse](t, rec).Content)

	rec = do(t, e, http.MethodGet, notePath, "")
	note = decode[contract.NoteResponse](t, rec)
	assert.Equal(t, "v1", *note.Content)
	assert.EqualValues(t, 2, note.VersionCount)
}

func TestNoteErrorsOverHTTP(t *testing.T) {
	e := newServer(t)
	userID := createUser(t, e, "ana@example.com")
	a := createNote(t, e, userID, "A", "a")
	b := createNote(t, e, userID, "B", "b")

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"non numeric id", http.MethodGet, "/api/notes/abc", "", http.StatusBadRequest},
		{"missing note", http.MethodGet, "/api/notes/9999", "", http.StatusNotFound},
		{"nothing to update", http.MethodPatch, fmt.Sprintf("/api/notes/%d", a.NoteID), `{}`, http.StatusBadRequest},
		{"malformed body", http.MethodPatch, fmt.Sprintf("/api/notes/%d", a.NoteID), `{"title":`, http.StatusBadRequest},
		{"empty title", http.MethodPost, "/api/notes", fmt.Sprintf(`{"userId":%d,"title":"","content":"c"}`, userID), http.StatusBadRequest},
		{"unknown user", http.MethodPost, "/api/notes", `{"userId":9999,"title":"t","content":"c"}`, http.StatusConflict},
		{"foreign restore", http.MethodPost, fmt.Sprintf("/api/notes/%d/restore/%d", a.NoteID, b.Version.ID), "", http.StatusNotFound},
		{"bad page", http.MethodGet, "/api/notes?page=x", "", http.StatusBadRequest},
		{"page size too big", http.MethodGet, "/api/notes?pageSize=1000", "", http.StatusBadRequest},
		{"export disabled", http.MethodPost, fmt.Sprintf("/api/notes/%d/versions/export", a.NoteID), "", http.StatusNotImplemented},
		{"missing connection id", http.MethodPost, fmt.Sprintf("/ws/connect?userId=%d", userID), "", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, e, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, e, http.MethodPatch, fmt.Sprintf("/api/notes/%d", a.NoteID), `{}`)
	assert.Equal(t, "Nothing to update", decode[map[string]string](t, rec)["message"])
}

func TestListingOverHTTP(t *testing.T) {
	e := newServer(t)
	userID := createUser(t, e, "ana@example.com")
	createUser(t, e, "idle@example.com")
	for _, title := range []string{"C", "A", "B"} {
		createNote(t, e, userID, title, "content")
	}

	rec := do(t, e, http.MethodGet, "/api/notes?page=1&pageSize=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	notes := decode[map[string][]contract.NoteSummaryResponse](t, rec)["notes"]
	require.Len(t, notes, 2)
	assert.Equal(t, "A", *notes[0].Title)
	assert.Equal(t, "B", *notes[1].Title)

	for _, page := range []string{"1000", "3689348814741910324"} {
		rec = do(t, e, http.MethodGet, "/api/notes?page="+page, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[map[string][]contract.NoteSummaryResponse](t, rec)["notes"])
	}

	rec = do(t, e, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[map[string][]contract.UserSummaryResponse](t, rec)["users"]
	require.Len(t, users, 2)
	assert.EqualValues(t, 3, users[0].NotesCount)
	assert.Zero(t, users[1].NotesCount)
}

func TestUserRoutes(t *testing.T) {
	e := newServer(t)
	userID := createUser(t, e, "ana@example.com")
	createNote(t, e, userID, "A", "a")

	rec := do(t, e, http.MethodPost, "/api/users", `{"name":"Bia","age":20,"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/users", `{"name":"Bia","email":"bia@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@example.com", decode[contract.UserResponse](t, rec).Email)

	rec = do(t, e, http.MethodDelete, fmt.Sprintf("/api/users/%d", userID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/notes", "")
	assert.Empty(t, decode[map[string][]contract.NoteSummaryResponse](t, rec)["notes"])

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepairAndHealthRoutes(t *testing.T) {
	e := newServer(t)
	createNote(t, e, createUser(t, e, "ana@example.com"), "A", "a")

	rec := do(t, e, http.MethodPost, "/api/maintenance/repair", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[contract.RepairReport](t, rec)
	assert.Zero(t, report.Found)

	for _, path := range []string{"/", "/health"} {
		rec = do(t, e, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode[map[string]bool](t, rec)["ok"])
	}
}

func TestWebSocketRoutes(t *testing.T) {
	e := newServer(t)
	userID := createUser(t, e, "ana@example.com")

	connect := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set(websocket.HeaderConnectionID, "conn-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, connect(fmt.Sprintf("/ws/connect?userId=%d", userID)))
	assert.Equal(t, http.StatusNotFound, connect("/ws/connect?userId=9999"))
	assert.Equal(t, http.StatusBadRequest, connect("/ws/connect?userId=abc"))
	assert.Equal(t, http.StatusOK, connect("/ws/disconnect"))
}
