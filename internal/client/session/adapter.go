package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tellbrandz/tbz/internal/client/backend"
	"github.com/tellbrandz/tbz/internal/client/functions"
	"github.com/tellbrandz/tbz/internal/client/localstore"
	"github.com/tellbrandz/tbz/internal/logging"
)

// Local storage keys owned by the adapter.
const (
	DemoSessionKey = "tellbrandz_demo_session"
	AuthTokenKey   = "tellbrandz_auth_token"
)

// SignUpRetryMessage is shown when sign-up could not reach the backend.
const SignUpRetryMessage = "We couldn't reach the server to create your account. Please check your connection and try again."

var ErrSignUpTransport = errors.New("sign-up transport failure")

// UserError carries a message that is safe to show as is.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

// Change is delivered to listeners whenever the held session is replaced.
type Change struct {
	Kind    backend.EventKind
	Session *Session
}

// SignUpResult reports the outcome of a sign-up. The account is unusable
// until the emailed confirmation link has been followed.
type SignUpResult struct {
	NeedsConfirmation bool
	Message           string
}

// Adapter owns the client's single authoritative Session. It is constructed
// once at start-up and handed to every consumer.
type Adapter struct {
	client backend.Client
	fns    *functions.Invoker
	store  localstore.Store
	log    logging.Logger

	mu        sync.RWMutex
	current   *Session
	loading   bool
	ready     chan struct{}
	readyOnce sync.Once
	listeners map[int]func(Change)
	nextID    int
}

func NewAdapter(client backend.Client, fns *functions.Invoker, store localstore.Store, log logging.Logger) *Adapter {
	return &Adapter{
		client:    client,
		fns:       fns,
		store:     store,
		log:       log.With("component", "session"),
		loading:   true,
		ready:     make(chan struct{}),
		listeners: make(map[int]func(Change)),
	}
}

// Start resolves the initial session and begins consuming auth events.
//
// A persisted demo session wins and is applied before Start returns.
// Otherwise a persisted refresh token is exchanged in the background and
// its outcome arrives through the event stream like any other change.
func (a *Adapter) Start(ctx context.Context) {
	go a.consume(ctx)

	var demo Session
	ok, err := localstore.GetJSON(ctx, a.store, DemoSessionKey, &demo)
	if err != nil {
		a.log.Warn(ctx, "ignoring unreadable demo session", "error", err)
	}
	if ok && demo.UserID != "" {
		demo.Demo = true
		a.replace(Change{Kind: backend.InitialSession, Session: &demo})
		a.markReady()
		return
	}

	token, err := a.store.Get(ctx, AuthTokenKey)
	if err != nil || len(token) == 0 {
		if err != nil {
			a.log.Warn(ctx, "reading stored token failed", "error", err)
		}
		a.markReady()
		return
	}

	go func() {
		if err := a.client.RefreshSession(ctx, string(token)); err != nil {
			a.log.Warn(ctx, "restoring session failed", "error", err)
			if !backend.IsTransient(err) && !errors.Is(err, backend.ErrSessionEnded) {
				a.forgetToken(ctx)
			}
			a.markReady()
		}
	}()
}

func (a *Adapter) consume(ctx context.Context) {
	events := a.client.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			a.apply(ctx, ev)
		}
	}
}

func (a *Adapter) apply(ctx context.Context, ev backend.AuthEvent) {
	defer a.markReady()

	if ev.Kind == backend.SignedOut || ev.Grant == nil {
		a.forgetToken(ctx)
		a.replace(Change{Kind: backend.SignedOut})
		return
	}

	s, err := FromGrant(ev.Grant)
	if err != nil {
		a.log.Error(ctx, "discarding unusable grant", "kind", ev.Kind, "error", err)
		return
	}
	// A backend grant supersedes any demo identity, also across restarts.
	if err := a.store.Delete(ctx, DemoSessionKey); err != nil {
		a.log.Warn(ctx, "removing demo session failed", "error", err)
	}
	if s.RefreshToken != "" {
		if err := a.store.Set(ctx, AuthTokenKey, []byte(s.RefreshToken)); err != nil {
			a.log.Warn(ctx, "persisting refresh token failed", "error", err)
		}
	}
	a.replace(Change{Kind: ev.Kind, Session: s})
}

// replace swaps the held session wholesale and notifies listeners.
// Clearing an already empty session is a no-op.
func (a *Adapter) replace(c Change) {
	a.mu.Lock()
	if a.current == nil && c.Session == nil {
		a.loading = false
		a.mu.Unlock()
		return
	}
	a.current = c.Session
	a.loading = false
	listeners := make([]func(Change), 0, len(a.listeners))
	for _, l := range a.listeners {
		listeners = append(listeners, l)
	}
	a.mu.Unlock()

	for _, l := range listeners {
		l(c)
	}
}

func (a *Adapter) markReady() {
	a.readyOnce.Do(func() {
		a.mu.Lock()
		a.loading = false
		a.mu.Unlock()
		close(a.ready)
	})
}

func (a *Adapter) forgetToken(ctx context.Context) {
	if err := a.store.Delete(ctx, AuthTokenKey); err != nil {
		a.log.Warn(ctx, "removing stored token failed", "error", err)
	}
}

// Ready is closed once the initial session has been resolved.
func (a *Adapter) Ready() <-chan struct{} {
	return a.ready
}

// Current returns the held session, or nil when signed out.
func (a *Adapter) Current() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current
}

func (a *Adapter) Loading() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// OnChange registers fn for every session replacement. Listeners run on the
// adapter's goroutine and must not block. The returned func unregisters fn.
func (a *Adapter) OnChange(fn func(Change)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// SignUp starts account creation through the sign-up function. It never
// creates a session: the account becomes usable only after confirmation.
func (a *Adapter) SignUp(ctx context.Context, email, password, fullName string) (SignUpResult, error) {
	resp, err := a.fns.Signup(ctx, functions.SignupRequest{Email: email, Password: password, FullName: fullName})
	if err != nil {
		var rej *functions.Rejection
		switch {
		case errors.As(err, &rej):
			return SignUpResult{}, &UserError{Message: rej.UserMessage(), Err: err}
		case errors.Is(err, functions.ErrInvalidRequest):
			return SignUpResult{}, err
		default:
			a.log.Error(ctx, "sign-up call failed", "error", err)
			return SignUpResult{}, &UserError{Message: SignUpRetryMessage, Err: fmt.Errorf("%w: %w", ErrSignUpTransport, err)}
		}
	}
	return SignUpResult{NeedsConfirmation: true, Message: resp.Message}, nil
}

// SignIn asks the backend for a password grant. The resulting session is
// delivered by the event stream, not by this call.
func (a *Adapter) SignIn(ctx context.Context, email, password string) error {
	err := a.client.SignInWithPassword(ctx, email, password)
	if err == nil {
		return nil
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return &UserError{Message: apiErr.Message, Err: err}
	}
	return err
}

// SignOut always leaves the client signed out. The demo marker goes first
// so a failing remote call cannot bring a stale demo identity back.
func (a *Adapter) SignOut(ctx context.Context) {
	if err := a.store.Delete(ctx, DemoSessionKey); err != nil {
		a.log.Warn(ctx, "removing demo session failed", "error", err)
	}

	if err := a.client.SignOut(ctx); err != nil {
		a.log.Warn(ctx, "remote sign-out failed", "error", err)
	}

	a.forgetToken(ctx)
	a.replace(Change{Kind: backend.SignedOut})
}

// StartDemo installs a local demo session with the given role.
func (a *Adapter) StartDemo(ctx context.Context, role string) (*Session, error) {
	if role == "" {
		role = RoleUser
	}
	s := &Session{
		UserID:         "demo-" + uuid.NewString(),
		Email:          "demo@tellbrandz.local",
		EmailConfirmed: true,
		Metadata:       Metadata{Role: role},
		Demo:           true,
	}
	if role == RoleBrand {
		s.Metadata.BrandID = "demo-brand"
	}
	if err := localstore.SetJSON(ctx, a.store, DemoSessionKey, s); err != nil {
		return nil, err
	}
	a.replace(Change{Kind: backend.SignedIn, Session: s})
	return s, nil
}
