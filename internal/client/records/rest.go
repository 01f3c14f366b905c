package records

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tellbrandz/tbz/internal/client/backend"
	"github.com/tellbrandz/tbz/internal/client/models"
)

// REST reads records through the backend's table endpoint.
type REST struct {
	client backend.Client
}

func NewREST(client backend.Client) *REST {
	return &REST{client: client}
}

func eq(v string) string { return "eq." + v }

func (r *REST) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	q := url.Values{"select": {"*"}, "order": {"name.asc"}}
	if err := r.client.Select(ctx, tableBrands, q, &out); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return out, nil
}

func (r *REST) ListTells(ctx context.Context, f TellFilter) ([]models.Tell, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if f.UserID != "" {
		q.Set("user_id", eq(f.UserID))
	}
	if f.BrandID != "" {
		q.Set("brand_id", eq(f.BrandID))
	}
	if f.Type != "" {
		q.Set("type", eq(string(f.Type)))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var out []models.Tell
	if err := r.client.Select(ctx, tableTells, q, &out); err != nil {
		return nil, fmt.Errorf("list tells: %w", err)
	}
	return out, nil
}

func (r *REST) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var out []models.Profile
	q := url.Values{"select": {"id,full_name,avatar_url,email"}, "id": {eq(userID)}, "limit": {"1"}}
	if err := r.client.Select(ctx, tableProfiles, q, &out); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *REST) UpdateProfileAvatar(ctx context.Context, userID, avatarURL string) error {
	patch := map[string]string{"avatar_url": avatarURL}
	if err := r.client.Update(ctx, tableProfiles, url.Values{"id": {eq(userID)}}, patch); err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	return nil
}

func (r *REST) ListAwards(ctx context.Context, brandID string) ([]models.Award, error) {
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if brandID != "" {
		q.Set("brand_id", eq(brandID))
	}
	var out []models.Award
	if err := r.client.Select(ctx, tableAwards, q, &out); err != nil {
		return nil, fmt.Errorf("list awards: %w", err)
	}
	return out, nil
}

func (r *REST) ListResolutions(ctx context.Context, brandID string) ([]models.Resolution, error) {
	q := url.Values{"select": {"*"}, "order": {"updated_at.desc"}}
	if brandID != "" {
		q.Set("brand_id", eq(brandID))
	}
	var out []models.Resolution
	if err := r.client.Select(ctx, tableResolutions, q, &out); err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	return out, nil
}

func (r *REST) ListClaims(ctx context.Context) ([]models.BrandClaim, error) {
	var out []models.BrandClaim
	q := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	if err := r.client.Select(ctx, tableClaims, q, &out); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return out, nil
}
