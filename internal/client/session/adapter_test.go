package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbrandz/tbz/internal/client/backend"
	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/localstore"
	"github.com/tellbrandz/tbz/internal/logging"
)

func makeToken(t *testing.T, sub, email string, appMeta map[string]any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":          sub,
		"email":        email,
		"exp":          time.Now().Add(time.Hour).Unix(),
		"app_metadata": appMeta,
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func makeGrant(t *testing.T, sub string) *backend.Grant {
	t.Helper()
	confirmed := time.Now()
	return &backend.Grant{
		AccessToken:  makeToken(t, sub, sub+"@example.com", map[string]any{"role": "user"}),
		RefreshToken: "refresh-" + sub,
		ExpiresIn:    3600,
		User:         backend.User{ID: sub, Email: sub + "@example.com", EmailConfirmedAt: &confirmed},
	}
}

// fakeClient implements backend.Client with an in-memory event stream.
type fakeClient struct {
	mu     sync.Mutex
	events chan backend.AuthEvent

	SignInErr      error
	SignInPublish  *backend.Grant
	SignOutErr     error
	RefreshErr     error
	RefreshPublish *backend.Grant
	InvokeRet      string
	InvokeErr      error

	LastRefreshToken string
	SignOutCalls     int
	InvokeCalls      int
	// demoPresentAtSignOut records whether the demo key still existed when
	// the remote sign-out ran.
	demoPresentAtSignOut bool
	store                localstore.Store
}

func newFakeClient() *fakeClient {
	return &fakeClient{events: make(chan backend.AuthEvent, 8)}
}

func (f *fakeClient) Close() error                                          { return nil }
func (f *fakeClient) Ping(context.Context) error                            { return nil }
func (f *fakeClient) GetUser(context.Context) (*backend.User, error)        { return nil, nil }
func (f *fakeClient) Events() <-chan backend.AuthEvent                      { return f.events }
func (f *fakeClient) Select(context.Context, string, url.Values, any) error { return nil }
func (f *fakeClient) Update(context.Context, string, url.Values, any) error { return nil }

func (f *fakeClient) SignInWithPassword(ctx context.Context, email, password string) error {
	if f.SignInErr != nil {
		return f.SignInErr
	}
	if f.SignInPublish != nil {
		f.events <- backend.AuthEvent{Kind: backend.SignedIn, Grant: f.SignInPublish}
	}
	return nil
}

func (f *fakeClient) RefreshSession(ctx context.Context, token string) error {
	f.mu.Lock()
	f.LastRefreshToken = token
	f.mu.Unlock()
	if f.RefreshErr != nil {
		return f.RefreshErr
	}
	if f.RefreshPublish != nil {
		f.events <- backend.AuthEvent{Kind: backend.InitialSession, Grant: f.RefreshPublish}
	}
	return nil
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.SignOutCalls++
	if f.store != nil {
		v, _ := f.store.Get(ctx, DemoSessionKey)
		f.demoPresentAtSignOut = v != nil
	}
	f.events <- backend.AuthEvent{Kind: backend.SignedOut}
	return f.SignOutErr
}

func (f *fakeClient) Invoke(context.Context, string, any) (json.RawMessage, error) {
	f.InvokeCalls++
	if f.InvokeErr != nil {
		return nil, f.InvokeErr
	}
	return json.RawMessage(f.InvokeRet), nil
}

func newAdapter(t *testing.T, fc *fakeClient, store localstore.Store) (*Adapter, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewAdapter(fc, functions.NewInvoker(fc), store, logging.Nop{}), ctx
}

func waitReady(t *testing.T, a *Adapter) {
	t.Helper()
	select {
	case <-a.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("adapter never became ready")
	}
}

func TestFromGrant_ReadsClaimsAndMetadata(t *testing.T) {
	g := makeGrant(t, "u1")
	g.AccessToken = makeToken(t, "u1", "a@b.com", map[string]any{"role": "brand", "brand_id": "b9"})

	s, err := FromGrant(g)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.Equal(t, "a@b.com", s.Email)
	assert.True(t, s.EmailConfirmed)
	assert.Equal(t, Metadata{Role: RoleBrand, BrandID: "b9"}, s.Metadata)
	assert.Equal(t, "refresh-u1", s.RefreshToken)
	assert.False(t, s.IsAdmin())
}

func TestFromGrant_BadToken(t *testing.T) {
	_, err := FromGrant(&backend.Grant{AccessToken: "garbage"})
	require.Error(t, err)
}

func TestStart_NoStoredState_ReadySignedOut(t *testing.T) {
	fc := newFakeClient()
	a, ctx := newAdapter(t, fc, localstore.NewMemory())
	assert.True(t, a.Loading())

	a.Start(ctx)
	waitReady(t, a)

	assert.False(t, a.Loading())
	assert.Nil(t, a.Current())
	assert.Empty(t, fc.LastRefreshToken)
}

func TestStart_DemoSessionTakesPrecedence(t *testing.T) {
	store := localstore.NewMemory()
	ctx := context.Background()
	require.NoError(t, localstore.SetJSON(ctx, store, DemoSessionKey, Session{UserID: "demo-1", Email: "d@x"}))
	require.NoError(t, store.Set(ctx, AuthTokenKey, []byte("stored-refresh")))

	fc := newFakeClient()
	a, runCtx := newAdapter(t, fc, store)
	a.Start(runCtx)

	cur := a.Current()
	require.NotNil(t, cur, "demo session must be applied synchronously")
	assert.Equal(t, "demo-1", cur.UserID)
	assert.True(t, cur.Demo)
	assert.Empty(t, fc.LastRefreshToken, "remote session must not be requested")
}

func TestStart_RestoresFromStoredToken(t *testing.T) {
	store := localstore.NewMemory()
	require.NoError(t, store.Set(context.Background(), AuthTokenKey, []byte("stored-refresh")))

	fc := newFakeClient()
	fc.RefreshPublish = makeGrant(t, "u1")
	a, ctx := newAdapter(t, fc, store)

	a.Start(ctx)
	waitReady(t, a)

	require.Eventually(t, func() bool { return a.Current() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "u1", a.Current().UserID)

	fc.mu.Lock()
	assert.Equal(t, "stored-refresh", fc.LastRefreshToken)
	fc.mu.Unlock()

	v, _ := store.Get(ctx, AuthTokenKey)
	assert.Equal(t, "refresh-u1", string(v))
}

func TestStart_RejectedStoredTokenIsForgotten(t *testing.T) {
	store := localstore.NewMemory()
	require.NoError(t, store.Set(context.Background(), AuthTokenKey, []byte("stale")))

	fc := newFakeClient()
	fc.RefreshErr = &backend.APIError{Status: 400, Message: "Invalid Refresh Token"}
	a, ctx := newAdapter(t, fc, store)

	a.Start(ctx)
	waitReady(t, a)

	require.Eventually(t, func() bool {
		v, _ := store.Get(ctx, AuthTokenKey)
		return v == nil
	}, time.Second, 5*time.Millisecond)
	assert.Nil(t, a.Current())
}

func TestSignIn_SessionComesFromEventStream(t *testing.T) {
	fc := newFakeClient()
	a, ctx := newAdapter(t, fc, localstore.NewMemory())
	a.Start(ctx)
	waitReady(t, a)

	// The call succeeds without publishing: the adapter must not invent a session.
	require.NoError(t, a.SignIn(ctx, "u1@example.com", "pw"))
	assert.Nil(t, a.Current())

	var changes []Change
	var mu sync.Mutex
	a.OnChange(func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	fc.events <- backend.AuthEvent{Kind: backend.SignedIn, Grant: makeGrant(t, "u1")}
	require.Eventually(t, func() bool { return a.Current() != nil }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 1)
	assert.Equal(t, backend.SignedIn, changes[0].Kind)
	assert.Equal(t, "u1", changes[0].Session.UserID)
}

func TestSignIn_ReplacesDemoAcrossRestart(t *testing.T) {
	store := localstore.NewMemory()

	fc := newFakeClient()
	fc.SignInPublish = makeGrant(t, "u1")
	a, ctx := newAdapter(t, fc, store)
	a.Start(ctx)
	waitReady(t, a)

	_, err := a.StartDemo(ctx, RoleUser)
	require.NoError(t, err)
	require.NoError(t, a.SignIn(ctx, "u1@example.com", "pw"))
	require.Eventually(t, func() bool {
		cur := a.Current()
		return cur != nil && cur.UserID == "u1"
	}, time.Second, 5*time.Millisecond)

	raw, err := store.Get(ctx, DemoSessionKey)
	require.NoError(t, err)
	assert.Nil(t, raw)

	restarted := newFakeClient()
	restarted.RefreshPublish = makeGrant(t, "u1")
	b, ctx2 := newAdapter(t, restarted, store)
	b.Start(ctx2)
	waitReady(t, b)

	require.Eventually(t, func() bool { return b.Current() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "u1", b.Current().UserID)
	assert.False(t, b.Current().Demo)
	restarted.mu.Lock()
	defer restarted.mu.Unlock()
	assert.Equal(t, "refresh-u1", restarted.LastRefreshToken)
}

func TestSignIn_BackendMessageVerbatim(t *testing.T) {
	fc := newFakeClient()
	fc.SignInErr = &backend.APIError{Status: 400, Message: "Invalid login credentials"}
	a, ctx := newAdapter(t, fc, localstore.NewMemory())

	err := a.SignIn(ctx, "a@b.com", "bad")
	require.EqualError(t, err, "Invalid login credentials")

	fc.SignInErr = backend.ErrUnavailable
	err = a.SignIn(ctx, "a@b.com", "bad")
	require.ErrorIs(t, err, backend.ErrUnavailable)
}

func TestSignUp_NeedsConfirmationAndNoSession(t *testing.T) {
	fc := newFakeClient()
	fc.InvokeRet = `{"success":true,"message":"check your email"}`
	a, ctx := newAdapter(t, fc, localstore.NewMemory())

	res, err := a.SignUp(ctx, "a@b.com", "secret1", "A B")
	require.NoError(t, err)
	assert.True(t, res.NeedsConfirmation)
	assert.Equal(t, "check your email", res.Message)
	assert.Nil(t, a.Current())
}

func TestSignUp_ErrorTranslation(t *testing.T) {
	fc := newFakeClient()
	a, ctx := newAdapter(t, fc, localstore.NewMemory())

	fc.InvokeErr = backend.ErrUnavailable
	_, err := a.SignUp(ctx, "a@b.com", "secret1", "A B")
	var uerr *UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, SignUpRetryMessage, uerr.Message)
	assert.ErrorIs(t, err, ErrSignUpTransport)
	assert.ErrorIs(t, err, backend.ErrUnavailable)

	fc.InvokeErr = nil
	fc.InvokeRet = `{"success":false,"error":"Email already registered"}`
	_, err = a.SignUp(ctx, "a@b.com", "secret1", "A B")
	require.EqualError(t, err, "Email already registered")
	assert.False(t, errors.Is(err, ErrSignUpTransport))
}

func TestSignOut_DemoClearedFirstAndRemoteFailureSwallowed(t *testing.T) {
	store := localstore.NewMemory()
	fc := newFakeClient()
	fc.store = store
	fc.SignOutErr = errors.New("network down")
	a, ctx := newAdapter(t, fc, store)
	a.Start(ctx)
	waitReady(t, a)

	_, err := a.StartDemo(ctx, RoleAdmin)
	require.NoError(t, err)
	require.True(t, a.Current().IsAdmin())

	a.SignOut(ctx)

	assert.Equal(t, 1, fc.SignOutCalls)
	assert.False(t, fc.demoPresentAtSignOut, "demo marker must be removed before the remote call")
	assert.Nil(t, a.Current())

	v, _ := store.Get(ctx, DemoSessionKey)
	assert.Nil(t, v)
}

func TestSessionClaims(t *testing.T) {
	var s *Session
	assert.Nil(t, s.Claims())
	assert.Nil(t, (&Session{UserID: "demo-1", Demo: true}).Claims())

	c := (&Session{UserID: "u1", Email: "a@b.com", Metadata: Metadata{Role: RoleBrand, BrandID: "b1"}}).Claims()
	assert.Equal(t, "u1", c["sub"])
	assert.Equal(t, "authenticated", c["role"])
	assert.Equal(t, Metadata{Role: RoleBrand, BrandID: "b1"}, c["app_metadata"])
}
