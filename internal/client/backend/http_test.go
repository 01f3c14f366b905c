package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbrandz/tbz/internal/logging"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func grantJSON(access, refresh string, expiresIn int64) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    expiresIn,
		"user":          map[string]any{"id": "u1", "email": "a@b.com"},
	}
}

func nextEvent(t *testing.T, c *HTTPClient) AuthEvent {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no auth event")
		return AuthEvent{}
	}
}

func TestSignInWithPassword_PublishesSignedIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret1", body["password"])

		writeJSON(w, http.StatusOK, grantJSON("acc", "ref", 3600))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "anon", time.Second)
	require.NoError(t, c.SignInWithPassword(context.Background(), "a@b.com", "secret1"))

	ev := nextEvent(t, c)
	assert.Equal(t, SignedIn, ev.Kind)
	require.NotNil(t, ev.Grant)
	assert.Equal(t, "acc", ev.Grant.AccessToken)
	assert.Equal(t, "u1", ev.Grant.User.ID)
	assert.Equal(t, "acc", c.accessToken())
}

func TestSignInWithPassword_RejectionKeepsBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":             "invalid_grant",
			"error_description": "Invalid login credentials",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	err := c.SignInWithPassword(context.Background(), "a@b.com", "bad")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
	assert.Empty(t, c.Events())
}

func TestRefreshSession_FirstIsInitialThenRefreshed(t *testing.T) {
	var n atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		i := n.Add(1)
		writeJSON(w, http.StatusOK, grantJSON("acc"+string(rune('0'+i)), "ref", 3600))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	ctx := context.Background()

	require.NoError(t, c.RefreshSession(ctx, "stored"))
	assert.Equal(t, InitialSession, nextEvent(t, c).Kind)

	require.NoError(t, c.RefreshSession(ctx, "ref"))
	assert.Equal(t, TokenRefreshed, nextEvent(t, c).Kind)

	assert.ErrorIs(t, c.RefreshSession(ctx, ""), ErrNoSession)
}

func TestSignOut_RemoteFailureStillPublishesSignedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			writeJSON(w, http.StatusOK, grantJSON("acc", "ref", 3600))
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer acc", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	ctx := context.Background()
	require.NoError(t, c.SignInWithPassword(ctx, "a@b.com", "x"))
	nextEvent(t, c)

	err := c.SignOut(ctx)
	require.ErrorIs(t, err, ErrUnavailable)

	ev := nextEvent(t, c)
	assert.Equal(t, SignedOut, ev.Kind)
	assert.Nil(t, ev.Grant)
	assert.Empty(t, c.accessToken())
}

func TestInvoke_PostsBodyAndReturnsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/functions/v1/search-brands", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nik", body["searchTerm"])
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	raw, err := c.Invoke(context.Background(), "search-brands", map[string]string{"searchTerm": "nik"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(raw))
}

func TestSelectAndUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]string{{"id": "u1", "full_name": "A B"}})
		case http.MethodPatch:
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	ctx := context.Background()

	var rows []struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
	}
	require.NoError(t, c.Select(ctx, "profiles", url.Values{"id": {"eq.u1"}}, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "A B", rows[0].FullName)

	require.NoError(t, c.Update(ctx, "profiles", url.Values{"id": {"eq.u1"}}, map[string]string{"avatar_url": "x"}))
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		is     error
		msg    string
	}{
		{"unauthorized bare", 401, ``, ErrUnauthorized, ""},
		{"forbidden with message", 403, `{"message":"nope"}`, ErrUnauthorized, "nope"},
		{"not found bare", 404, ``, ErrNotFound, ""},
		{"server error", 503, `{"message":"down"}`, ErrUnavailable, ""},
		{"bad request", 400, `{"msg":"weak password"}`, nil, "weak password"},
		{"conflict no body", 409, ``, nil, "Conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapStatus(tt.status, []byte(tt.body))
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			if tt.msg != "" {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.msg, apiErr.Message)
			}
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsTransient(err))
	assert.False(t, IsTransient(errors.New("other")))
}

func TestStartRefresher_RefreshesBeforeExpiry(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			refreshes.Add(1)
			writeJSON(w, http.StatusOK, grantJSON("acc2", "ref2", 3600))
			return
		}
		writeJSON(w, http.StatusOK, grantJSON("acc1", "ref1", 1))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.StartRefresher(ctx, time.Second, logging.Nop{})

	require.NoError(t, c.SignInWithPassword(ctx, "a@b.com", "x"))
	assert.Equal(t, SignedIn, nextEvent(t, c).Kind)
	assert.Equal(t, TokenRefreshed, nextEvent(t, c).Kind)
	assert.Equal(t, "acc2", c.accessToken())
	assert.EqualValues(t, 1, refreshes.Load())
}

func TestStartRefresher_RejectedRefreshSignsOut(t *testing.T) {
	orig := refreshBackoff
	refreshBackoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { refreshBackoff = orig })

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error_description": "Refresh Token Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, grantJSON("acc1", "ref1", 1))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.StartRefresher(ctx, time.Second, logging.Nop{})

	require.NoError(t, c.SignInWithPassword(ctx, "a@b.com", "x"))
	assert.Equal(t, SignedIn, nextEvent(t, c).Kind)
	assert.Equal(t, SignedOut, nextEvent(t, c).Kind)
	assert.Empty(t, c.accessToken())
}

func TestRefreshSession_DroppedAfterSignOut(t *testing.T) {
	orig := refreshBackoff
	refreshBackoff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { refreshBackoff = orig })

	refreshing := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Query().Get("grant_type") == "refresh_token":
			close(refreshing)
			<-release
			writeJSON(w, http.StatusOK, grantJSON("acc2", "ref2", 3600))
		default:
			writeJSON(w, http.StatusOK, grantJSON("acc1", "ref1", 1))
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go c.StartRefresher(ctx, time.Second, logging.Nop{})

	require.NoError(t, c.SignInWithPassword(ctx, "a@b.com", "x"))
	assert.Equal(t, SignedIn, nextEvent(t, c).Kind)

	select {
	case <-refreshing:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	require.NoError(t, c.SignOut(ctx))
	assert.Equal(t, SignedOut, nextEvent(t, c).Kind)

	close(release)

	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event after sign-out: %s", ev.Kind)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Empty(t, c.accessToken())
}

func TestRefreshSession_DroppedAfterNewSignIn(t *testing.T) {
	refreshing := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			close(refreshing)
			<-release
		}
		writeJSON(w, http.StatusOK, grantJSON("acc", "ref", 3600))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", 5*time.Second)
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- c.RefreshSession(ctx, "stored") }()

	<-refreshing
	require.NoError(t, c.SignInWithPassword(ctx, "a@b.com", "x"))
	assert.Equal(t, SignedIn, nextEvent(t, c).Kind)

	close(release)
	require.ErrorIs(t, <-errc, ErrSessionEnded)
	assert.Empty(t, c.Events())
}
