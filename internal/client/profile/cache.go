// Package profile caches the display profile of the signed-in user.
//
// The cache is keyed on the session's user id: a token refresh replaces the
// session object but keeps the id, and must not trigger another fetch.
package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/records"
	"github.com/tellbrandz/tbz/internal/client/session"
	"github.com/tellbrandz/tbz/internal/client/uploads"
	"github.com/tellbrandz/tbz/internal/logging"
)

var ErrNoSession = errors.New("not signed in")

// Sessions is the part of the session adapter the cache depends on.
type Sessions interface {
	Current() *session.Session
	OnChange(fn func(session.Change)) func()
}

type Cache struct {
	repo     records.Repository
	sessions Sessions
	uploader *uploads.Uploader
	log      logging.Logger

	mu       sync.RWMutex
	profile  *models.Profile
	loading  bool
	lastUser string
	seen     bool
}

func NewCache(repo records.Repository, sessions Sessions, uploader *uploads.Uploader, log logging.Logger) *Cache {
	return &Cache{
		repo:     repo,
		sessions: sessions,
		uploader: uploader,
		log:      log.With("component", "profile"),
		loading:  true,
	}
}

func (c *Cache) Profile() *models.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

func (c *Cache) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func userID(s *session.Session) string {
	if s == nil {
		return ""
	}
	return s.UserID
}

// Refresh fetches the profile of the current session's user and replaces
// the cached one. Without a session the cache is cleared and no request is
// made. A result that arrives after the user changed is discarded.
func (c *Cache) Refresh(ctx context.Context) error {
	s := c.sessions.Current()
	if s == nil {
		c.mu.Lock()
		c.profile = nil
		c.loading = false
		c.mu.Unlock()
		return nil
	}

	if s.Demo {
		c.set(s.UserID, &models.Profile{ID: s.UserID, Email: s.Email, FullName: "Demo " + s.Metadata.Role})
		return nil
	}

	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	p, err := c.repo.GetProfile(ctx, s.UserID)
	switch {
	case errors.Is(err, records.ErrNotFound):
		// New accounts may not have a profile row yet.
		p = &models.Profile{ID: s.UserID, Email: s.Email}
	case err != nil:
		c.failed(s.UserID)
		return fmt.Errorf("refresh profile: %w", err)
	}
	if p.Email == "" {
		p.Email = s.Email
	}

	c.set(s.UserID, p)
	return nil
}

func (c *Cache) set(forUser string, p *models.Profile) {
	if userID(c.sessions.Current()) != forUser {
		c.log.Debug(context.Background(), "dropping stale profile", "user", forUser)
		return
	}
	c.mu.Lock()
	c.profile = p
	c.loading = false
	c.mu.Unlock()
}

// failed ends loading for forUser's fetch, unless a newer user's fetch
// is still in flight.
func (c *Cache) failed(forUser string) {
	if userID(c.sessions.Current()) != forUser {
		return
	}
	c.mu.Lock()
	c.loading = false
	c.mu.Unlock()
}

// UpdatePhoto replaces the cached avatar without re-fetching. The caller
// must already have persisted the photo remotely.
func (c *Cache) UpdatePhoto(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile != nil {
		c.profile.AvatarURL = url
	}
}

// Watch refreshes the cache now and whenever the session's user id
// changes, until ctx is done.
func (c *Cache) Watch(ctx context.Context) {
	c.onSession(ctx, c.sessions.Current())

	stop := c.sessions.OnChange(func(ch session.Change) {
		c.onSession(ctx, ch.Session)
	})
	go func() {
		<-ctx.Done()
		stop()
	}()
}

func (c *Cache) onSession(ctx context.Context, s *session.Session) {
	id := userID(s)

	c.mu.Lock()
	if c.seen && id == c.lastUser {
		c.mu.Unlock()
		return
	}
	c.seen = true
	c.lastUser = id
	c.mu.Unlock()

	go func() {
		if err := c.Refresh(ctx); err != nil {
			c.log.Warn(ctx, "profile refresh failed", "error", err)
		}
	}()
}

// UploadPhoto stores f as the user's avatar, persists its URL on the
// profile row and then updates the cache.
func (c *Cache) UploadPhoto(ctx context.Context, f uploads.File) (string, error) {
	s := c.sessions.Current()
	if s == nil {
		return "", ErrNoSession
	}

	url, err := c.uploader.Upload(ctx, f)
	if err != nil {
		return "", err
	}
	if !s.Demo {
		if err := c.repo.UpdateProfileAvatar(ctx, s.UserID, url); err != nil {
			return "", err
		}
	}

	c.UpdatePhoto(url)
	return url, nil
}
