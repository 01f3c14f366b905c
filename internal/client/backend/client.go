package backend

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// EventKind classifies an identity change.
type EventKind string

const (
	InitialSession EventKind = "INITIAL_SESSION"
	SignedIn       EventKind = "SIGNED_IN"
	TokenRefreshed EventKind = "TOKEN_REFRESHED"
	SignedOut      EventKind = "SIGNED_OUT"
)

// User is the identity record returned by the auth endpoints.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	AppMetadata      map[string]any `json:"app_metadata"`
}

// Grant is a token pair issued by the identity provider.
type Grant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Expiry returns the absolute expiry time of the access token.
func (g Grant) Expiry(now time.Time) time.Time {
	if g.ExpiresAt > 0 {
		return time.Unix(g.ExpiresAt, 0)
	}
	return now.Add(time.Duration(g.ExpiresIn) * time.Second)
}

// AuthEvent reports an identity change. Grant is nil for SignedOut.
type AuthEvent struct {
	Kind  EventKind
	Grant *Grant
}

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	// SignInWithPassword, RefreshSession and SignOut report their outcome on
	// Events. SignOut always publishes SignedOut, even when the remote call
	// fails.
	SignInWithPassword(ctx context.Context, email, password string) error
	RefreshSession(ctx context.Context, refreshToken string) error
	SignOut(ctx context.Context) error
	GetUser(ctx context.Context) (*User, error)
	Events() <-chan AuthEvent

	Invoke(ctx context.Context, function string, body any) (json.RawMessage, error)
	Select(ctx context.Context, table string, query url.Values, out any) error
	Update(ctx context.Context, table string, match url.Values, patch any) error
}
