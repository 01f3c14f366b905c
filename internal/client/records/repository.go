// Package records reads the flat TellBrandz records the client displays.
// Rows are fetched wholesale per view and filtered client-side; the only
// write is the profile avatar after a photo upload.
//
// Two drivers exist: REST goes through the backend's table endpoint, and
// Postgres talks to the database directly with the caller's JWT claims
// applied per transaction so row-level policies still hold.
package records

import (
	"context"
	"errors"

	"github.com/tellbrandz/tbz/internal/client/models"
)

var ErrNotFound = errors.New("record not found")

// TellFilter narrows ListTells. Zero values mean no constraint.
type TellFilter struct {
	UserID  string
	BrandID string
	Type    models.TellType
	Limit   int
}

type Repository interface {
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListTells(ctx context.Context, f TellFilter) ([]models.Tell, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfileAvatar(ctx context.Context, userID, avatarURL string) error
	ListAwards(ctx context.Context, brandID string) ([]models.Award, error)
	ListResolutions(ctx context.Context, brandID string) ([]models.Resolution, error)
	ListClaims(ctx context.Context) ([]models.BrandClaim, error)
}

// Table names shared by both drivers.
const (
	tableBrands      = "brands"
	tableTells       = "tells"
	tableProfiles    = "profiles"
	tableAwards      = "brand_awards"
	tableResolutions = "resolutions"
	tableClaims      = "brand_claims"
)
