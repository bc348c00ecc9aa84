package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/app"
	"violet-client/internal/bootstrap"
	"violet-client/internal/config"
	"violet-client/internal/testutil/fakebackend"
)

type env struct {
	srv     *fakebackend.Server
	factory Factory
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := fakebackend.New(t)
	srv.AddUser("alice", "secret")

	dir := t.TempDir()
	t.Setenv("VIOLET_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("VIOLET_BACKEND_URL", srv.BaseURL())
	t.Setenv("VIOLET_STORAGE_DRIVER", "badger")
	t.Setenv("VIOLET_STORAGE_DIR", filepath.Join(dir, "session"))
	t.Setenv("VIOLET_LOG_FILE", filepath.Join(dir, "violet.log"))

	factory := func(ctx context.Context) (*bootstrap.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return bootstrap.NewWithConfig(ctx, cfg)
	}
	return &env{srv: srv, factory: factory}
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), args, strings.NewReader(stdin), &out, &errOut, e.factory)
	return out.String(), errOut.String(), err
}

func (e *env) login(t *testing.T) {
	t.Helper()
	_, _, err := e.run(t, "", "login", "alice", "-p", "secret")
	require.NoError(t, err)
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	e := newEnv(t)
	e.srv.AddCollection("alice", "Papers", nil)

	out, errOut, err := e.run(t, "", "login", "alice", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice, 1 collection(s)")
	assert.Contains(t, errOut, "Welcome back!")

	out, _, err = e.run(t, "", "collections", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Papers")
	assert.Contains(t, out, "openai/gpt-4o-mini")
	assert.Equal(t, 1, e.srv.Calls("POST /api/auth/login"))

	out, _, err = e.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as alice")
	assert.Contains(t, out, "Token expires")
}

func TestLoginPromptsForMissingFields(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "alice\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: ")
	assert.Contains(t, out, "Signed in as alice")
}

func TestLoginWithoutPassword(t *testing.T) {
	e := newEnv(t)

	_, errOut, err := e.run(t, "\n", "login", "alice")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
	assert.Contains(t, errOut, "Please enter username and password")
	assert.Zero(t, e.srv.TotalCalls())
}

func TestCommandsRequireSession(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	_, _, err = e.run(t, "", "collections", "list")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	e.login(t)
	_, errOut, err := e.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Logged out successfully")

	_, _, err = e.run(t, "", "ask", "1", "hello")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAskPrintsAnswerAndSources(t *testing.T) {
	e := newEnv(t)
	coll := e.srv.AddCollection("alice", "Papers", nil)
	e.login(t)

	out, _, err := e.run(t, "", "ask", formatID(coll.ID), "What", "is", "X?")
	require.NoError(t, err)
	assert.Contains(t, out, fakebackend.Answer("What is X?"))
	assert.Contains(t, out, "Papers.pdf (page 1")
}

func TestChatREPL(t *testing.T) {
	e := newEnv(t)
	coll := e.srv.AddCollection("alice", "Papers", nil)
	e.login(t)

	out, _, err := e.run(t, "first\n\nsecond\n/quit\n", "chat", formatID(coll.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Chatting with Papers")
	assert.Contains(t, out, fakebackend.Answer("first"))
	assert.Contains(t, out, fakebackend.Answer("second"))
	assert.Len(t, e.srv.Chats(), 2)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	e := newEnv(t)
	coll := e.srv.AddCollection("alice", "Papers", nil)
	e.login(t)

	_, _, err := e.run(t, "n\n", "collections", "delete", formatID(coll.ID))
	assert.ErrorIs(t, err, app.ErrNotConfirmed)
	assert.True(t, e.srv.HasCollection(coll.ID))

	_, errOut, err := e.run(t, "y\n", "collections", "delete", formatID(coll.ID))
	require.NoError(t, err)
	assert.Contains(t, errOut, "Collection deleted")
	assert.False(t, e.srv.HasCollection(coll.ID))
}

func TestUploadFiltersAndReports(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	dir := t.TempDir()
	pdf := filepath.Join(dir, "report.pdf")
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(txt, []byte("plain"), 0o644))

	out, errOut, err := e.run(t, "", "upload", "--name", "Reports", pdf, txt)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Only PDF files are supported")
	assert.Contains(t, errOut, "uploading... 10%")
	assert.Contains(t, errOut, "Successfully uploaded 1 file(s)!")
	assert.Contains(t, out, "Reports")
	assert.Contains(t, out, "Summary of Reports")

	uploads := e.srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, []string{"report.pdf"}, uploads[0].FileNames)
}

func TestProvidersAndTables(t *testing.T) {
	e := newEnv(t)
	coll := e.srv.AddCollection("alice", "Papers", nil)
	e.login(t)

	out, _, err := e.run(t, "", "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "OpenAI (openai)")

	out, _, err = e.run(t, "", "collections", "tables", formatID(coll.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "No tables found.")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
