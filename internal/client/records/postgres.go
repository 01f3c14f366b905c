package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/dbx"
)

// Identity returns the JWT claims of the current caller, or nil when the
// caller is anonymous.
type Identity func() map[string]any

// Postgres reads records straight from the database. Every call runs in a
// transaction with request.jwt.claims set locally, so the same row policies
// apply as behind the REST endpoint.
type Postgres struct {
	db       *sql.DB
	identity Identity
}

// OpenPostgres opens a pgx-backed database handle and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewPostgres(db *sql.DB, identity Identity) *Postgres {
	return &Postgres{db: db, identity: identity}
}

func (r *Postgres) claims() (string, error) {
	c := map[string]any{"role": "anon"}
	if r.identity != nil {
		if id := r.identity(); id != nil {
			c = id
		}
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}
	return string(b), nil
}

func (r *Postgres) withClaims(ctx context.Context, readOnly bool, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	claims, err := r.claims()
	if err != nil {
		return err
	}
	return dbx.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: readOnly}, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `SELECT set_config('request.jwt.claims', $1, true)`, claims); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return fn(ctx, tx)
	})
}

// where joins the non-empty conditions; args are numbered from 1.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (r *Postgres) ListBrands(ctx context.Context) ([]models.Brand, error) {
	query := `SELECT id, name, COALESCE(domain, ''), COALESCE(logo_url, ''), COALESCE(category, ''),
		COALESCE(country, ''), COALESCE(rating, 0), COALESCE(review_count, 0), verified, created_at
		FROM brands ORDER BY name`

	var out []models.Brand
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var b models.Brand
			if err := rows.Scan(&b.ID, &b.Name, &b.Domain, &b.LogoURL, &b.Category,
				&b.Country, &b.Rating, &b.ReviewCount, &b.Verified, &b.CreatedAt); err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Postgres) ListTells(ctx context.Context, f TellFilter) ([]models.Tell, error) {
	var conds []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.BrandID != "" {
		add("brand_id", f.BrandID)
	}
	if f.Type != "" {
		add("type", string(f.Type))
	}

	query := `SELECT id, user_id, type, title, description, brand_name, COALESCE(brand_id::text, ''),
		COALESCE(image_url, ''), COALESCE(video_url, ''), status, created_at
		FROM tells` + where(conds) + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var out []models.Tell
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Tell
			if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Title, &t.Description, &t.BrandName,
				&t.BrandID, &t.ImageURL, &t.VideoURL, &t.Status, &t.CreatedAt); err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Postgres) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT id, COALESCE(full_name, ''), COALESCE(avatar_url, ''), COALESCE(email, '')
		FROM profiles WHERE id = $1`

	p := &models.Profile{}
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx, query, userID).Scan(&p.ID, &p.FullName, &p.AvatarURL, &p.Email)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Postgres) UpdateProfileAvatar(ctx context.Context, userID, avatarURL string) error {
	query := `UPDATE profiles SET avatar_url = $1, updated_at = now() WHERE id = $2`

	return r.withClaims(ctx, false, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, query, avatarURL, userID)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *Postgres) ListAwards(ctx context.Context, brandID string) ([]models.Award, error) {
	var conds []string
	var args []any
	if brandID != "" {
		args = append(args, brandID)
		conds = append(conds, "brand_id = $1")
	}
	query := `SELECT id, brand_id, tier, COALESCE(period, ''), created_at FROM brand_awards` +
		where(conds) + ` ORDER BY created_at DESC`

	var out []models.Award
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var a models.Award
			if err := rows.Scan(&a.ID, &a.BrandID, &a.Tier, &a.Period, &a.CreatedAt); err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Postgres) ListResolutions(ctx context.Context, brandID string) ([]models.Resolution, error) {
	var conds []string
	var args []any
	if brandID != "" {
		args = append(args, brandID)
		conds = append(conds, "brand_id = $1")
	}
	query := `SELECT id, tell_id, brand_id, status, COALESCE(notes, ''), updated_at FROM resolutions` +
		where(conds) + ` ORDER BY updated_at DESC`

	var out []models.Resolution
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var res models.Resolution
			if err := rows.Scan(&res.ID, &res.TellID, &res.BrandID, &res.Status, &res.Notes, &res.UpdatedAt); err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			out = append(out, res)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Postgres) ListClaims(ctx context.Context) ([]models.BrandClaim, error) {
	query := `SELECT id, brand_name, claimant_name, work_email, COALESCE(job_title, ''),
		COALESCE(array_to_json(document_urls), '[]')::text, status, created_at
		FROM brand_claims ORDER BY created_at DESC`

	var out []models.BrandClaim
	err := r.withClaims(ctx, true, func(ctx context.Context, tx dbx.DBTX) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var c models.BrandClaim
			var docs string
			if err := rows.Scan(&c.ID, &c.BrandName, &c.ClaimantName, &c.WorkEmail, &c.JobTitle,
				&docs, &c.Status, &c.CreatedAt); err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			if err := json.Unmarshal([]byte(docs), &c.DocumentURLs); err != nil {
				return fmt.Errorf("decode document urls: %w", err)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
