package profile

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbrandz/tbz/internal/client/backend"
	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/records"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/logging"
)

type fakeSessions struct {
	mu        sync.Mutex
	current   *session.Session
	listeners []func(session.Change)
}

func (f *fakeSessions) Current() *session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeSessions) OnChange(fn func(session.Change)) func() {
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeSessions) set(kind backend.EventKind, s *session.Session) {
	f.mu.Lock()
	f.current = s
	ls := append([]func(session.Change){}, f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(session.Change{Kind: kind, Session: s})
	}
}

type fakeRepo struct {
	records.Repository

	profiles   map[string]*models.Profile
	fetches    atomic.Int32
	beforeGet  func()
	getErr     error
	LastUser   string
	LastAvatar string
}

func (r *fakeRepo) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	r.fetches.Add(1)
	if r.beforeGet != nil {
		r.beforeGet()
	}
	if r.getErr != nil {
		return nil, r.getErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, records.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) UpdateProfileAvatar(_ context.Context, userID, url string) error {
	r.LastUser = userID
	r.LastAvatar = url
	return nil
}

type fakeStore struct{}

func (fakeStore) Put(context.Context, string, io.Reader, int64, string) error { return nil }
func (fakeStore) PublicURL(key string) string                                 { return "http://cdn/" + key }

func newCache(sessions *fakeSessions, repo *fakeRepo) *Cache {
	return NewCache(repo, sessions, uploads.NewUploader(fakeStore{}, logging.Nop{}), logging.Nop{})
}

func userSession(id string) *session.Session {
	return &session.Session{UserID: id, Email: id + "@example.com", Metadata: session.Metadata{Role: session.RoleUser}}
}

func TestRefresh_NoSessionClearsWithoutFetch(t *testing.T) {
	repo := &fakeRepo{}
	c := newCache(&fakeSessions{}, repo)
	require.True(t, c.Loading())

	require.NoError(t, c.Refresh(context.Background()))
	assert.False(t, c.Loading())
	assert.Nil(t, c.Profile())
	assert.Zero(t, repo.fetches.Load())
}

func TestRefresh_FetchesProfile(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{"u1": {ID: "u1", FullName: "A B"}}}
	c := newCache(&fakeSessions{current: userSession("u1")}, repo)

	require.NoError(t, c.Refresh(context.Background()))
	p := c.Profile()
	require.NotNil(t, p)
	assert.Equal(t, "A B", p.FullName)
	assert.Equal(t, "u1@example.com", p.Email)
	assert.False(t, c.Loading())
}

func TestRefresh_MissingRowFallsBackToSession(t *testing.T) {
	c := newCache(&fakeSessions{current: userSession("u2")}, &fakeRepo{})

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, &models.Profile{ID: "u2", Email: "u2@example.com"}, c.Profile())
	assert.Equal(t, "u2@example.com", c.Profile().DisplayName())
}

func TestRefresh_DropsResultForPreviousUser(t *testing.T) {
	sessions := &fakeSessions{current: userSession("u1")}
	repo := &fakeRepo{profiles: map[string]*models.Profile{"u1": {ID: "u1", FullName: "Old"}}}
	repo.beforeGet = func() { sessions.current = userSession("u2") }
	c := newCache(sessions, repo)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Nil(t, c.Profile())
}

func TestRefresh_PreviousUserFailureKeepsLoading(t *testing.T) {
	sessions := &fakeSessions{current: userSession("u1")}
	repo := &fakeRepo{getErr: backend.ErrUnavailable}
	repo.beforeGet = func() { sessions.current = userSession("u2") }
	c := newCache(sessions, repo)

	require.ErrorIs(t, c.Refresh(context.Background()), backend.ErrUnavailable)
	assert.True(t, c.Loading(), "u2's fetch is still outstanding")

	repo.beforeGet = nil
	require.Error(t, c.Refresh(context.Background()))
	assert.False(t, c.Loading())
}

func TestUpdatePhoto_LocalOnly(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{"u1": {ID: "u1"}}}
	c := newCache(&fakeSessions{current: userSession("u1")}, repo)
	require.NoError(t, c.Refresh(context.Background()))

	c.UpdatePhoto("http://cdn/new.png")
	assert.Equal(t, "http://cdn/new.png", c.Profile().AvatarURL)
	assert.Equal(t, int32(1), repo.fetches.Load())
	assert.Empty(t, repo.LastAvatar)
}

func TestWatch_RefetchesOnlyWhenUserChanges(t *testing.T) {
	sessions := &fakeSessions{current: userSession("u1")}
	repo := &fakeRepo{profiles: map[string]*models.Profile{
		"u1": {ID: "u1", FullName: "One"},
		"u2": {ID: "u2", FullName: "Two"},
	}}
	c := newCache(sessions, repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Watch(ctx)
	require.Eventually(t, func() bool { return c.Profile() != nil }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), repo.fetches.Load())

	// Token refresh: new session object, same user.
	sessions.set(backend.TokenRefreshed, userSession("u1"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), repo.fetches.Load())

	sessions.set(backend.SignedIn, userSession("u2"))
	require.Eventually(t, func() bool {
		p := c.Profile()
		return p != nil && p.FullName == "Two"
	}, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), repo.fetches.Load())

	sessions.set(backend.SignedOut, nil)
	require.Eventually(t, func() bool { return c.Profile() == nil }, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), repo.fetches.Load())
}

func TestUploadPhoto(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]*models.Profile{"u1": {ID: "u1"}}}
	c := newCache(&fakeSessions{current: userSession("u1")}, repo)
	require.NoError(t, c.Refresh(context.Background()))

	f := uploads.File{
		Name: "me.jpg", Size: 3, ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader("abc")), nil },
	}
	url, err := c.UploadPhoto(context.Background(), f)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://cdn/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))
	assert.Equal(t, "u1", repo.LastUser)
	assert.Equal(t, url, repo.LastAvatar)
	assert.Equal(t, url, c.Profile().AvatarURL)
}

func TestUploadPhoto_RequiresSession(t *testing.T) {
	c := newCache(&fakeSessions{}, &fakeRepo{})
	_, err := c.UploadPhoto(context.Background(), uploads.File{})
	require.ErrorIs(t, err, ErrNoSession)
}
