// Package models defines the client-side view models of TellBrandz records.
// The backend owns the canonical rows; these are fetched wholesale per view.
package models

import "time"

// TellType is the polarity of a Tell.
type TellType string

const (
	// BrandBeat is a positive experience.
	BrandBeat TellType = "brandbeat"
	// BrandBlast is a negative experience.
	BrandBlast TellType = "brandblast"
)

// Valid reports whether t is one of the known polarities.
func (t TellType) Valid() bool {
	return t == BrandBeat || t == BrandBlast
}

// Profile is the denormalised display profile of a user.
type Profile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

// DisplayName prefers the full name and falls back to the email.
func (p Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

type Brand struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	LogoURL     string    `json:"logo_url"`
	Category    string    `json:"category"`
	Country     string    `json:"country"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type Tell struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        TellType  `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	BrandName   string    `json:"brand_name"`
	BrandID     string    `json:"brand_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// AwardTier is the badge level granted to a brand.
type AwardTier string

const (
	TierBronze   AwardTier = "bronze"
	TierSilver   AwardTier = "silver"
	TierGold     AwardTier = "gold"
	TierPlatinum AwardTier = "platinum"
)

type Award struct {
	ID        string    `json:"id"`
	BrandID   string    `json:"brand_id"`
	Tier      AwardTier `json:"tier"`
	Period    string    `json:"period"`
	CreatedAt time.Time `json:"created_at"`
}

type Resolution struct {
	ID        string    `json:"id"`
	TellID    string    `json:"tell_id"`
	BrandID   string    `json:"brand_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BrandClaim struct {
	ID           string    `json:"id"`
	BrandName    string    `json:"brand_name"`
	ClaimantName string    `json:"claimant_name"`
	WorkEmail    string    `json:"work_email"`
	JobTitle     string    `json:"job_title"`
	DocumentURLs []string  `json:"document_urls"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
