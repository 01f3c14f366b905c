package functions

import (
	"fmt"
	"strings"
)

type BrandSearchRequest struct {
	SearchTerm string `json:"searchTerm"`
}

func (BrandSearchRequest) FunctionName() string { return FnSearchBrands }

func (r BrandSearchRequest) Validate() error {
	if len(strings.TrimSpace(r.SearchTerm)) < 2 {
		return fmt.Errorf("%w: searchTerm needs at least 2 characters", ErrInvalidRequest)
	}
	return nil
}

type BrandSuggestion struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	LogoURL string `json:"logoUrl"`
}

type BrandSearchResponse struct {
	Success bool              `json:"success"`
	Brands  []BrandSuggestion `json:"brands"`
}

func (r BrandSearchResponse) check() error {
	if r.Brands == nil {
		return fmt.Errorf("brands missing")
	}
	for i, b := range r.Brands {
		if b.Name == "" {
			return fmt.Errorf("brands[%d] has no name", i)
		}
	}
	return nil
}

type BrandLogoRequest struct {
	BrandName string `json:"brandName"`
}

func (BrandLogoRequest) FunctionName() string { return FnFetchBrandLogo }

func (r BrandLogoRequest) Validate() error {
	return required("brandName", strings.TrimSpace(r.BrandName))
}

type BrandLogoResponse struct {
	Success bool   `json:"success"`
	LogoURL string `json:"logoUrl"`
}

func (r BrandLogoResponse) check() error {
	if r.LogoURL == "" {
		return fmt.Errorf("logoUrl missing")
	}
	return nil
}

// BrandClaimRequest asks to be recognised as a brand's representative.
type BrandClaimRequest struct {
	BrandName    string   `json:"brand_name"`
	ClaimantName string   `json:"claimant_name"`
	WorkEmail    string   `json:"work_email"`
	JobTitle     string   `json:"job_title"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	DocumentURLs []string `json:"document_urls"`
}

func (BrandClaimRequest) FunctionName() string { return FnSubmitBrandClaim }

func (r BrandClaimRequest) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"brand_name", r.BrandName},
		{"claimant_name", r.ClaimantName},
		{"work_email", r.WorkEmail},
		{"job_title", r.JobTitle},
	} {
		if err := required(f.name, strings.TrimSpace(f.value)); err != nil {
			return err
		}
	}
	return nil
}

type BrandClaimResponse struct {
	Success bool   `json:"success"`
	ClaimID string `json:"claimId"`
	Message string `json:"message"`
}

func (r BrandClaimResponse) check() error {
	if r.ClaimID == "" {
		return fmt.Errorf("claimId missing")
	}
	return nil
}
