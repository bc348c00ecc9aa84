package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/app"
	"violet-client/internal/backend"
	"violet-client/internal/bootstrap"
	"violet-client/internal/config"
	"violet-client/internal/model"
	"violet-client/internal/notify"
	"violet-client/internal/pkg/logger"
	"violet-client/internal/storage"
	"violet-client/internal/testutil/fakebackend"
	httptransport "violet-client/internal/transport/http"
	"violet-client/internal/transport/http/response"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type bridge struct {
	srv    *fakebackend.Server
	router http.Handler
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	srv := fakebackend.New(t)
	srv.AddUser("alice", "secret")

	queue := notify.NewQueue(time.Minute)
	t.Cleanup(queue.Dismiss)
	orchestrator, err := app.New(app.Options{
		Backend:  backend.NewClient(backend.Options{BaseURL: srv.BaseURL()}),
		Slots:    storage.NewMemorySlots(storage.DefaultKeys()),
		Notifier: queue,
	})
	require.NoError(t, err)

	a := &bootstrap.App{
		Config: &config.Config{
			Backend: config.BackendConfig{BaseURL: srv.BaseURL()},
			Storage: config.StorageConfig{Driver: "memory"},
			Bridge:  config.BridgeConfig{GinMode: "test"},
		},
		Logger:       logger.NewNop(),
		Notifier:     queue,
		Orchestrator: orchestrator,
		StartedAt:    time.Now(),
	}
	return &bridge{srv: srv, router: httptransport.NewRouter(a)}
}

func (b *bridge) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return b.serve(t, req)
}

func (b *bridge) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func decodeState(t *testing.T, raw json.RawMessage) app.Snapshot {
	t.Helper()
	var snap app.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	return snap
}

func TestHealthz(t *testing.T) {
	b := newBridge(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"storage":"memory"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestLoginFlow(t *testing.T) {
	b := newBridge(t)

	status, env := b.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.CodeBadRequest, env.Code)
	snap := decodeState(t, env.Data)
	require.NotNil(t, snap.Notification)
	assert.Equal(t, "Please enter username and password", snap.Notification.Message)

	status, env = b.do(t, http.MethodGet, "/api/collections/1/tables", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.CodeUnauthorized, env.Code)

	status, env = b.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)
	snap = decodeState(t, env.Data)
	assert.Equal(t, model.StatusAuthenticated, snap.Session.Status)
	assert.Equal(t, "Welcome back!", snap.Notification.Message)

	status, env = b.do(t, http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.StatusUnauthenticated, decodeState(t, env.Data).Session.Status)
}

func TestSelectChatAndDelete(t *testing.T) {
	b := newBridge(t)
	coll := b.srv.AddCollection("alice", "Papers", nil)
	status, _ := b.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)

	status, env := b.do(t, http.MethodPost, fmt.Sprintf("/api/collections/%d/select", coll.ID), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, coll.ID, decodeState(t, env.Data).Selected.ID)

	status, env = b.do(t, http.MethodPost, "/api/chat", map[string]string{"question": "What is X?"})
	require.Equal(t, http.StatusOK, status)
	transcript := decodeState(t, env.Data).Transcript
	require.Len(t, transcript, 2)
	assert.Equal(t, fakebackend.Answer("What is X?"), transcript[1].Content)

	status, env = b.do(t, http.MethodDelete, fmt.Sprintf("/api/collections/%d", coll.ID), nil)
	assert.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, response.CodeNotConfirmed, env.Code)
	assert.True(t, b.srv.HasCollection(coll.ID))

	status, env = b.do(t, http.MethodDelete, fmt.Sprintf("/api/collections/%d?confirm=true", coll.ID), nil)
	require.Equal(t, http.StatusOK, status)
	snap := decodeState(t, env.Data)
	assert.Nil(t, snap.Selected)
	assert.Empty(t, snap.Transcript)
	assert.Empty(t, snap.Collections)

	status, _ = b.do(t, http.MethodPost, "/api/collections/999/select", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUploadMultipart(t *testing.T) {
	b := newBridge(t)
	status, _ := b.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusOK, status)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", "report.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("collection_name", "Reports"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	status, env := b.serve(t, req)
	require.Equal(t, http.StatusOK, status)

	var data struct {
		State app.Snapshot `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.State.Selected)
	assert.Equal(t, "Reports", data.State.Selected.Name)
	assert.Equal(t, "Successfully uploaded 1 file(s)!", data.State.Notification.Message)
}

func TestProviders(t *testing.T) {
	b := newBridge(t)
	status, env := b.do(t, http.MethodGet, "/api/providers", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"openai"`)
}
