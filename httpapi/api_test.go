package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskroom/auth"
	"taskroom/bus"
	"taskroom/moderation"
	"taskroom/realtime"
	"taskroom/repositories"
	"taskroom/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	server *httptest.Server
}

func newAPIFixture(t *testing.T) apiFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	options := badger.DefaultOptions(t.TempDir()).
		WithLogger(nil).
		WithValueLogFileSize(16 << 20)
	db, err := badger.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	users := repositories.NewUserRepository(db)
	projectRepo, err := repositories.NewProjectRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = projectRepo.Close() })

	tokens := auth.NewTokenManager("test-secret-at-least-32-characters", time.Hour)
	resolver := auth.NewResolver(tokens, users, log)
	moderator, err := moderation.NewModerator([]string{"badword"}, '*', log)
	require.NoError(t, err)

	registry := bus.NewGroupRegistry(log)
	notifier := services.NewNotifier(registry, log)
	authService := services.NewAuthService(users, tokens)
	projectService := services.NewProjectService(projectRepo, notifier, log)
	chat := realtime.NewHandler(registry, resolver, moderator, 32, log)

	api := NewServer("127.0.0.1:0", authService, projectService, resolver, chat, log)
	server := httptest.NewServer(api.Router())
	t.Cleanup(server.Close)
	return apiFixture{server: server}
}

func (f apiFixture) post(t *testing.T, path, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, f.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f apiFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.server.Client().Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (f apiFixture) register(t *testing.T, email string) string {
	t.Helper()
	resp := f.post(t, "/api/register", "", map[string]string{
		"email":    email,
		"password": "Sup3r$trongPass!",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[tokenResponse](t, resp).Token
}

func TestAPI_RegisterAndLogin(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)

	token := fixture.register(t, "alice@example.com")
	req.NotEmpty(token)

	// Same email twice is a conflict
	resp := fixture.post(t, "/api/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3r$trongPass!",
	})
	req.Equal(http.StatusConflict, resp.StatusCode)

	// Login with the right password works
	resp = fixture.post(t, "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3r$trongPass!",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	req.NotEmpty(decodeBody[tokenResponse](t, resp).Token)

	// Wrong password and unknown email get the same answer
	for _, creds := range []map[string]string{
		{"email": "alice@example.com", "password": "WrongPass1!"},
		{"email": "nobody@example.com", "password": "Sup3r$trongPass!"},
	} {
		resp = fixture.post(t, "/api/login", "", creds)
		req.Equal(http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAPI_WeakPasswordRejected(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)

	resp := fixture.post(t, "/api/register", "", map[string]string{
		"email":    "bob@example.com",
		"password": "short",
	})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ProjectCRUD(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	token := fixture.register(t, "owner@example.com")

	// Creation needs a credential
	resp := fixture.post(t, "/api/projects", "", map[string]string{"name": "Website"})
	req.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = fixture.post(t, "/api/projects", token, map[string]string{
		"name":        "Website",
		"description": "Marketing relaunch",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)
	project := decodeBody[projectResponse](t, resp)
	req.Positive(project.ID)
	req.NotEmpty(project.OwnerID)

	resp = fixture.post(t, fmt.Sprintf("/api/projects/%d/tasks", project.ID), token, map[string]string{
		"title": "Design",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)
	task := decodeBody[taskResponse](t, resp)
	req.False(task.IsCompleted)

	// The project payload embeds its tasks
	resp = fixture.get(t, fmt.Sprintf("/api/projects/%d", project.ID))
	req.Equal(http.StatusOK, resp.StatusCode)
	loaded := decodeBody[projectResponse](t, resp)
	req.Len(loaded.Tasks, 1)
	req.Equal("Design", loaded.Tasks[0].Title)

	resp = fixture.get(t, "/api/projects")
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(decodeBody[[]projectResponse](t, resp), 1)

	resp = fixture.get(t, "/api/projects/9999")
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CompleteTaskOwnerOnly(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	owner := fixture.register(t, "owner@example.com")
	intruder := fixture.register(t, "intruder@example.com")

	resp := fixture.post(t, "/api/projects", owner, map[string]string{"name": "Website"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	project := decodeBody[projectResponse](t, resp)

	resp = fixture.post(t, fmt.Sprintf("/api/projects/%d/tasks", project.ID), owner, map[string]string{"title": "Design"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	task := decodeBody[taskResponse](t, resp)

	completePath := fmt.Sprintf("/api/tasks/%d/complete", task.ID)

	resp = fixture.post(t, completePath, intruder, nil)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	resp = fixture.post(t, completePath, owner, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.True(decodeBody[taskResponse](t, resp).IsCompleted)

	resp = fixture.post(t, "/api/tasks/9999/complete", owner, nil)
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAPI_TaskCompletionReachesChatRoom(t *testing.T) {
	req := require.New(t)
	fixture := newAPIFixture(t)
	owner := fixture.register(t, "owner@example.com")

	resp := fixture.post(t, "/api/projects", owner, map[string]string{"name": "Website"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	project := decodeBody[projectResponse](t, resp)

	resp = fixture.post(t, fmt.Sprintf("/api/projects/%d/tasks", project.ID), owner, map[string]string{"title": "Design"})
	req.Equal(http.StatusCreated, resp.StatusCode)
	task := decodeBody[taskResponse](t, resp)

	// A member sits in the project room over the same router
	wsURL := "ws" + strings.TrimPrefix(fixture.server.URL, "http") +
		fmt.Sprintf("/ws/projects/%d", project.ID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.NoError(err)
	defer conn.Close()

	var ack map[string]string
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(conn.ReadJSON(&ack))
	req.Equal("connection_established", ack["type"])

	resp = fixture.post(t, fmt.Sprintf("/api/tasks/%d/complete", task.ID), owner, nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	var notice map[string]string
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	req.NoError(conn.ReadJSON(&notice))
	req.Equal("chat_message", notice["type"])
	req.Equal("System", notice["sender"])
	req.Equal("The task 'Design' has been completed.", notice["text"])
}
