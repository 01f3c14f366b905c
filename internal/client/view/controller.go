// Package view tracks where the user is. Two axes exist: the URL path,
// which selects a page, and ViewState, which selects a sub-view within a
// page. They change independently; the only automatic bridges are the
// entries of Transitions, applied when the session appears or ends.
package view

import (
	"errors"
	"sync"
	"time"

	"github.com/tellbrandz/tbz/internal/client/session"
)

// ScrollReassertDelay is when the scroll reset is repeated after a path
// change, absorbing late layout shifts.
const ScrollReassertDelay = 100 * time.Millisecond

var (
	ErrSignInRequired = errors.New("sign in required")
	ErrForbidden      = errors.New("not allowed for this account")
)

// Viewport is reset to the top on every path change.
type Viewport interface {
	ScrollToTop()
}

// Sessions is the part of the session adapter the controller reads.
type Sessions interface {
	Current() *session.Session
	OnChange(fn func(session.Change)) func()
}

type Controller struct {
	sessions  Sessions
	viewport  Viewport
	afterFunc func(time.Duration, func()) *time.Timer

	mu         sync.Mutex
	route      Route
	view       ViewState
	hadSession bool
	reassert   *time.Timer
	closed     bool
}

func NewController(sessions Sessions, viewport Viewport) *Controller {
	return &Controller{
		sessions:   sessions,
		viewport:   viewport,
		afterFunc:  time.AfterFunc,
		route:      Resolve("/"),
		view:       ViewHome,
		hadSession: sessions.Current() != nil,
	}
}

// Bind applies Transitions on every session change until the returned
// func is called. Session presence is re-read at bind time, so a session
// restored after NewController is still seen ending.
func (c *Controller) Bind() func() {
	stop := c.sessions.OnChange(func(ch session.Change) {
		c.SessionChanged(ch.Session != nil)
	})
	c.mu.Lock()
	c.hadSession = c.sessions.Current() != nil
	c.mu.Unlock()
	return stop
}

// SessionChanged feeds a session presence update into the transition table.
// Only absent->present and present->absent edges fire triggers, so
// repeating an update is a no-op.
func (c *Controller) SessionChanged(present bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case present && !c.hadSession:
		c.view = next(c.view, SessionAppeared)
	case !present && c.hadSession:
		c.view = next(c.view, SessionEnded)
	}
	c.hadSession = present
}

func (c *Controller) Route() Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Navigate moves to raw. Guarded pages redirect to /auth with the auth
// sub-view when there is no session; the error says why.
func (c *Controller) Navigate(raw string) (Route, error) {
	r := Resolve(raw)

	var guardErr error
	if r.Page == PageDashboard && c.sessions.Current() == nil {
		guardErr = ErrSignInRequired
		r = Resolve("/auth")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return r, nil
	}
	changed := r.Path != c.route.Path
	c.route = r
	if guardErr != nil {
		c.view = ViewAuth
	}
	if changed {
		if c.reassert != nil {
			c.reassert.Stop()
		}
		c.reassert = c.afterFunc(ScrollReassertDelay, c.scrollIfOpen)
	}
	c.mu.Unlock()

	if changed {
		c.viewport.ScrollToTop()
	}
	return r, guardErr
}

func (c *Controller) scrollIfOpen() {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if !closed {
		c.viewport.ScrollToTop()
	}
}

// SetView switches the sub-view after checking the role guards.
func (c *Controller) SetView(v ViewState) error {
	if err := c.allowed(v); err != nil {
		return err
	}
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	return nil
}

func (c *Controller) allowed(v ViewState) error {
	s := c.sessions.Current()
	switch v {
	case ViewProfile, ViewTellForm, ViewBrandClaim:
		if s == nil {
			return ErrSignInRequired
		}
	case ViewAdmin:
		if s == nil {
			return ErrSignInRequired
		}
		if !s.IsAdmin() {
			return ErrForbidden
		}
	case ViewBrandDashboard:
		if s == nil {
			return ErrSignInRequired
		}
		if s.IsAdmin() {
			return nil
		}
		if s.Metadata.Role != session.RoleBrand || s.Metadata.BrandID == "" {
			return ErrForbidden
		}
	}
	return nil
}

// Close cancels any pending scroll reassertion.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.reassert != nil {
		c.reassert.Stop()
	}
}
