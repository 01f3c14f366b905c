package functions

import (
	"fmt"

	"github.com/tellbrandz/tbz/internal/client/models"
)

// AwardsAction is the closed set of brand-awards actions.
type AwardsAction interface {
	Request
	awardsAction()
}

// ComputeAwards recomputes award tiers for a brand and period.
type ComputeAwards struct {
	BrandID string `json:"brandId"`
	Period  string `json:"period"`
}

// ListAwards lists the awards of one brand, or all awards when BrandID is empty.
type ListAwards struct {
	BrandID string `json:"brandId,omitempty"`
}

// GrantAward grants a tier manually (admin only).
type GrantAward struct {
	BrandID string           `json:"brandId"`
	Tier    models.AwardTier `json:"tier"`
}

func (ComputeAwards) FunctionName() string { return FnBrandAwards }
func (ListAwards) FunctionName() string    { return FnBrandAwards }
func (GrantAward) FunctionName() string    { return FnBrandAwards }
func (ComputeAwards) awardsAction()        {}
func (ListAwards) awardsAction()           {}
func (GrantAward) awardsAction()           {}

func (r ComputeAwards) Validate() error { return required("brandId", r.BrandID) }
func (r ListAwards) Validate() error    { return nil }

func (r GrantAward) Validate() error {
	if err := required("brandId", r.BrandID); err != nil {
		return err
	}
	switch r.Tier {
	case models.TierBronze, models.TierSilver, models.TierGold, models.TierPlatinum:
		return nil
	}
	return fmt.Errorf("%w: unknown tier %q", ErrInvalidRequest, r.Tier)
}

func (r ComputeAwards) MarshalJSON() ([]byte, error) {
	type plain ComputeAwards
	return withAction("compute", plain(r))
}

func (r ListAwards) MarshalJSON() ([]byte, error) {
	type plain ListAwards
	return withAction("list", plain(r))
}

func (r GrantAward) MarshalJSON() ([]byte, error) {
	type plain GrantAward
	return withAction("grant", plain(r))
}

type AwardsResponse struct {
	Success bool           `json:"success"`
	Data    []models.Award `json:"data"`
}

func (r AwardsResponse) check() error {
	for i, a := range r.Data {
		if a.BrandID == "" || a.Tier == "" {
			return fmt.Errorf("data[%d] incomplete", i)
		}
	}
	return nil
}

// TrendingAction is the closed set of trending-brands actions.
type TrendingAction interface {
	Request
	trendingAction()
}

// ListTrending returns the current ranking for a window ("24h", "7d", "30d").
type ListTrending struct {
	Window string `json:"window"`
	Limit  int    `json:"limit,omitempty"`
}

// RecomputeTrending asks the backend to rebuild scores (admin only).
type RecomputeTrending struct{}

func (ListTrending) FunctionName() string      { return FnTrendingBrands }
func (RecomputeTrending) FunctionName() string { return FnTrendingBrands }
func (ListTrending) trendingAction()           {}
func (RecomputeTrending) trendingAction()      {}

func (r ListTrending) Validate() error {
	switch r.Window {
	case "24h", "7d", "30d":
	default:
		return fmt.Errorf("%w: window must be 24h, 7d or 30d", ErrInvalidRequest)
	}
	if r.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	return nil
}

func (RecomputeTrending) Validate() error { return nil }

func (r ListTrending) MarshalJSON() ([]byte, error) {
	type plain ListTrending
	return withAction("list", plain(r))
}

func (r RecomputeTrending) MarshalJSON() ([]byte, error) {
	type plain RecomputeTrending
	return withAction("recompute", plain(r))
}

type TrendingBrand struct {
	BrandID string  `json:"brandId"`
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Rank    int     `json:"rank"`
}

type TrendingResponse struct {
	Success bool            `json:"success"`
	Data    []TrendingBrand `json:"data"`
}

func (r TrendingResponse) check() error {
	for i, b := range r.Data {
		if b.Name == "" {
			return fmt.Errorf("data[%d] has no name", i)
		}
	}
	return nil
}

// ResolutionAction is the closed set of resolution-workflow actions.
type ResolutionAction interface {
	Request
	resolutionAction()
}

type OpenResolution struct {
	TellID  string `json:"tellId"`
	BrandID string `json:"brandId"`
}

type UpdateResolution struct {
	ResolutionID string `json:"resolutionId"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
}

type CloseResolution struct {
	ResolutionID string `json:"resolutionId"`
}

func (OpenResolution) FunctionName() string   { return FnResolutionWorkflow }
func (UpdateResolution) FunctionName() string { return FnResolutionWorkflow }
func (CloseResolution) FunctionName() string  { return FnResolutionWorkflow }
func (OpenResolution) resolutionAction()      {}
func (UpdateResolution) resolutionAction()    {}
func (CloseResolution) resolutionAction()     {}

func (r OpenResolution) Validate() error {
	if err := required("tellId", r.TellID); err != nil {
		return err
	}
	return required("brandId", r.BrandID)
}

func (r UpdateResolution) Validate() error {
	if err := required("resolutionId", r.ResolutionID); err != nil {
		return err
	}
	return required("status", r.Status)
}

func (r CloseResolution) Validate() error { return required("resolutionId", r.ResolutionID) }

func (r OpenResolution) MarshalJSON() ([]byte, error) {
	type plain OpenResolution
	return withAction("open", plain(r))
}

func (r UpdateResolution) MarshalJSON() ([]byte, error) {
	type plain UpdateResolution
	return withAction("update", plain(r))
}

func (r CloseResolution) MarshalJSON() ([]byte, error) {
	type plain CloseResolution
	return withAction("close", plain(r))
}

type ResolutionResponse struct {
	Success bool              `json:"success"`
	Data    models.Resolution `json:"data"`
}

func (r ResolutionResponse) check() error {
	if r.Data.ID == "" {
		return fmt.Errorf("data.id missing")
	}
	return nil
}

// VerifyPayment confirms a subscription payment by its provider reference.
type VerifyPayment struct {
	Reference string `json:"reference"`
	Plan      string `json:"plan"`
}

func (VerifyPayment) FunctionName() string { return FnVerifyPayment }

func (r VerifyPayment) Validate() error {
	if err := required("reference", r.Reference); err != nil {
		return err
	}
	return required("plan", r.Plan)
}

func (r VerifyPayment) MarshalJSON() ([]byte, error) {
	type plain VerifyPayment
	return withAction("verify", plain(r))
}

type PaymentStatus struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Plan      string `json:"plan"`
}

type PaymentResponse struct {
	Success bool          `json:"success"`
	Data    PaymentStatus `json:"data"`
}

func (r PaymentResponse) check() error {
	if r.Data.Status == "" {
		return fmt.Errorf("data.status missing")
	}
	return nil
}
