package backend_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"violet-client/internal/backend"
	"violet-client/internal/model"
	"violet-client/internal/testutil/fakebackend"
)

func newClient(t *testing.T) (*backend.Client, *fakebackend.Server) {
	t.Helper()
	srv := fakebackend.New(t)
	return backend.NewClient(backend.Options{BaseURL: srv.BaseURL(), Timeout: 5 * time.Second}), srv
}

func TestLoginAndListCollections(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("alice", "secret")
	created := srv.AddCollection("alice", "Papers", nil)

	token, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	collections, err := client.ListCollections(context.Background(), token.AccessToken)
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, created.ID, collections[0].ID)
	assert.Equal(t, "Papers", collections[0].DisplayName())
	assert.Equal(t, "openai/gpt-4o-mini", collections[0].ModelLabel())
}

func TestLoginRejectedCarriesDetail(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("alice", "secret")

	_, err := client.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	detail, ok := backend.Detail(err)
	assert.True(t, ok)
	assert.Equal(t, "Incorrect username or password", detail)
}

func TestUnauthorizedMatchesSentinel(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.ListCollections(context.Background(), "bogus")
	assert.True(t, errors.Is(err, backend.ErrUnauthorized))
	assert.False(t, backend.IsTransport(err))
}

func TestRegisterValidationListDetail(t *testing.T) {
	client, srv := newClient(t)
	srv.FailNext("POST /api/auth/register", http.StatusUnprocessableEntity, []map[string]interface{}{
		{"loc": []string{"body", "username"}, "msg": "field required"},
		{"loc": []string{"body", "password"}, "msg": "too short"},
	})

	err := client.Register(context.Background(), "bob", "pw")
	detail, ok := backend.Detail(err)
	require.True(t, ok)
	assert.Equal(t, "field required; too short", detail)
	assert.False(t, errors.Is(err, backend.ErrUnauthorized))
}

func TestRegisterThenLogin(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "carol", "pw123456"))
	err := client.Register(ctx, "carol", "pw123456")
	detail, _ := backend.Detail(err)
	assert.Equal(t, "Username already registered", detail)

	_, err = client.Login(ctx, "carol", "pw123456")
	assert.NoError(t, err)
}

func TestUploadChatInsightsAndDelete(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("alice", "secret")
	ctx := context.Background()
	token, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	result, err := client.Upload(ctx, token.AccessToken, backend.UploadRequest{
		Files:          []model.UploadFile{model.MemFile("a.pdf", []byte("%PDF-1")), model.MemFile("b.pdf", []byte("%PDF-2"))},
		CollectionName: "Reports",
		LLMProvider:    "openai",
		LLMModel:       "gpt-4o-mini",
	})
	require.NoError(t, err)
	assert.Equal(t, "Reports", result.Collection.Name)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, result.UploadedFiles)
	require.NotNil(t, result.Insights)

	uploads := srv.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "gpt-4o-mini", uploads[0].LLMModel)

	insights, err := client.Insights(ctx, token.AccessToken, result.Collection.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summary of Reports", insights.Summary)
	assert.Equal(t, 2, insights.DocumentStats["files"])

	answer, err := client.Chat(ctx, token.AccessToken, backend.ChatRequest{CollectionID: result.Collection.ID, Question: "What is X?"})
	require.NoError(t, err)
	assert.Equal(t, fakebackend.Answer("What is X?"), answer.Answer)
	assert.Equal(t, "rag", answer.Type)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, 1, answer.Sources[0].Page)

	require.NoError(t, client.DeleteCollection(ctx, token.AccessToken, result.Collection.ID))
	assert.False(t, srv.HasCollection(result.Collection.ID))

	err = client.DeleteCollection(ctx, token.AccessToken, result.Collection.ID)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestDeleteAllTablesAndProviders(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("alice", "secret")
	first := srv.AddCollection("alice", "One", nil)
	srv.AddCollection("alice", "Two", nil)
	srv.AddTables(first.ID, []model.TableInfo{{TableIndex: 0, Source: "one.pdf", Columns: []string{"a", "b"}, RowCount: 3}})
	ctx := context.Background()
	token, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	tables, err := client.Tables(ctx, token.AccessToken, first.ID)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"a", "b"}, tables[0].Columns)

	providers, err := client.LLMProviders(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, providers)
	assert.Equal(t, "openai", providers[0].ID)

	result, err := client.DeleteAllCollections(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DeletedCount)

	collections, err := client.ListCollections(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Empty(t, collections)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Options{BaseURL: srv.URL + "/"})
	_, err := client.ListCollections(context.Background(), "tok1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok1", got.Get("Authorization"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestTransportErrors(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := backend.NewClient(backend.Options{BaseURL: url})
		_, err := client.ListCollections(context.Background(), "tok")
		assert.True(t, backend.IsTransport(err))
		_, hasDetail := backend.Detail(err)
		assert.False(t, hasDetail)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer srv.Close()

		client := backend.NewClient(backend.Options{BaseURL: srv.URL})
		_, err := client.ListCollections(context.Background(), "tok")
		assert.True(t, backend.IsTransport(err))
	})

	t.Run("error without json detail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		client := backend.NewClient(backend.Options{BaseURL: srv.URL})
		err := client.DeleteCollection(context.Background(), "tok", 1)
		var apiErr *backend.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
		assert.Empty(t, apiErr.Detail)
	})
}
