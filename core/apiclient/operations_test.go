package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/apiclient"
)

func TestLogin_FlattenedPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, apiclient.LoginPath, r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "alice", creds["username"])
		require.Equal(t, "secret", creds["password"])

		w.Write([]byte(`{"data":{
			"access":"acc-1","refresh":"ref-1",
			"id":"u1","username":"alice","email":"alice@example.com",
			"first_name":"Alice","last_name":"Liddell"
		}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	result, err := client.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "acc-1", result.Tokens.Access)
	assert.Equal(t, "ref-1", result.Tokens.Refresh)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, "Alice", result.User.FirstName)
	assert.True(t, result.User.Complete())
}

func TestRefresh_TokenRotation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, apiclient.RefreshPath, r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "old-refresh", body["refresh"])

		w.Write([]byte(`{"data":{"access":"new-access","refresh":"new-refresh"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	pair, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", pair.Access)
	assert.Equal(t, "new-refresh", pair.Refresh)
}

func TestRefresh_WithoutRotation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"access":"new-access"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	pair, err := client.Refresh(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", pair.Access)
	assert.Empty(t, pair.Refresh, "server that does not rotate returns no refresh token")
}

func TestFetchSelf(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, apiclient.SelfPath, r.URL.Path)
		w.Write([]byte(`{"data":{"id":"u1","username":"alice","email":"alice@example.com"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)
	user, err := client.FetchSelf(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.True(t, user.Complete())
}

func TestUpdateSelf_PartialResponseMerges(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, apiclient.SelfPath, r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, map[string]any{"first_name": "Alicia"}, body, "nil fields must be omitted")

		// Server echoes only the changed field.
		w.Write([]byte(`{"data":{"first_name":"Alicia"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)

	// Decoding into a prepopulated record leaves absent fields untouched.
	user := apiclient.UserRecord{ID: "u1", Username: "alice", Email: "alice@example.com", FirstName: "Alice"}
	firstName := "Alicia"
	err := client.UpdateSelf(context.Background(), apiclient.UserUpdate{FirstName: &firstName}, &user)
	require.NoError(t, err)

	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
}
