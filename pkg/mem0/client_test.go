package mem0

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPostsUserMessage(t *testing.T) {
	var got addRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/memories", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL+"/", 0).Add(context.Background(), "I like hiking", "u1")
	require.NoError(t, err)
	assert.Equal(t, "m1", out["id"])
	assert.Equal(t, "u1", got.UserID)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "I like hiking", got.Messages[0].Content)
}

func TestSearchQueryAndLegacyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/memories/search", r.URL.Path)
		assert.Equal(t, "coffee", r.URL.Query().Get("q"))
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "3", r.URL.Query().Get("k"))
		_, _ = w.Write([]byte(`{"data":[{"memory":"likes coffee"}]}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, 0).Search(context.Background(), "coffee", "u1", 3)
	require.NoError(t, err)
	items := res.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "likes coffee", items[0].Content())
}

func TestForgetWritesCorrectionNote(t *testing.T) {
	var got addRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, 0).Forget(context.Background(), " tea ", "u1"))
	assert.Equal(t, "Update: tea is no longer valid.", got.Messages[0].Content)
}

func TestUserContextSwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	assert.Empty(t, c.GetUserContext(context.Background(), "u1", 5))

	_, err := c.Search(context.Background(), "x", "u1", 5)
	assert.Error(t, err)
}

func TestResetPostsUser(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/reset", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL, 0).Reset(context.Background(), "u1"))
	assert.Equal(t, "u1", got["user_id"])
}
