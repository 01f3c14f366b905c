// Package session holds the client's authoritative Session and the Adapter
// that keeps it in step with the backend's auth event stream.
package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tellbrandz/tbz/internal/client/backend"
)

// Roles carried in session metadata.
const (
	RoleUser  = "user"
	RoleBrand = "brand"
	RoleAdmin = "admin"
)

type Metadata struct {
	Role    string `json:"role,omitempty"`
	BrandID string `json:"brand_id,omitempty"`
}

type Session struct {
	UserID         string    `json:"user_id"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	Metadata       Metadata  `json:"metadata"`
	AccessToken    string    `json:"-"`
	RefreshToken   string    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
	// Demo marks a locally fabricated session that never talked to the backend.
	Demo bool `json:"demo"`
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Metadata.Role == RoleAdmin
}

// Claims is the subset of the access-token claims the client reads.
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
	jwt.RegisteredClaims
}

// parseClaims decodes the access token without verifying its signature;
// the backend verifies every request, the client only needs the payload.
func parseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

func stringFrom(maps []map[string]any, keys ...string) string {
	for _, m := range maps {
		for _, k := range keys {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// FromGrant builds a Session from a token grant. Token claims win over the
// user object echoed in the grant.
func FromGrant(g *backend.Grant) (*Session, error) {
	claims, err := parseClaims(g.AccessToken)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UserID:         claims.Subject,
		Email:          claims.Email,
		EmailConfirmed: g.User.EmailConfirmedAt != nil,
		AccessToken:    g.AccessToken,
		RefreshToken:   g.RefreshToken,
		ExpiresAt:      g.Expiry(time.Now()),
	}
	if s.UserID == "" {
		s.UserID = g.User.ID
	}
	if s.Email == "" {
		s.Email = g.User.Email
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	// App metadata is server controlled and outranks user metadata.
	sources := []map[string]any{claims.AppMetadata, g.User.AppMetadata, claims.UserMetadata, g.User.UserMetadata}
	s.Metadata.Role = stringFrom(sources, "role")
	s.Metadata.BrandID = stringFrom(sources, "brand_id", "brandId")
	if s.Metadata.Role == "" {
		s.Metadata.Role = RoleUser
	}

	if s.UserID == "" {
		return nil, fmt.Errorf("grant carries no user id")
	}
	return s, nil
}

// Claims returns the JWT claims describing s for direct database access,
// or nil when s is nil or a demo session.
func (s *Session) Claims() map[string]any {
	if s == nil || s.Demo {
		return nil
	}
	return map[string]any{
		"sub":          s.UserID,
		"email":        s.Email,
		"role":         "authenticated",
		"app_metadata": s.Metadata,
	}
}
