// Package directory filters, sorts, compares and exports the brand list.
// The list is fetched wholesale and every operation here is local and pure.
package directory

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/tellbrandz/tbz/internal/client/models"
)

// RatingRange is an inclusive bound on Brand.Rating.
type RatingRange struct {
	Min float64
	Max float64
}

func (r RatingRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Filter selects brands. Zero-valued fields do not constrain.
type Filter struct {
	Query        string
	Category     string
	Country      string
	Rating       *RatingRange
	VerifiedOnly bool
	// IDs restricts the result to these brand ids, e.g. favourites.
	IDs []string
}

func (f Filter) match(b models.Brand) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(b.Name), q) &&
			!strings.Contains(strings.ToLower(b.Domain), q) &&
			!strings.Contains(strings.ToLower(b.Category), q) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(f.Category, b.Category) {
		return false
	}
	if f.Country != "" && !strings.EqualFold(f.Country, b.Country) {
		return false
	}
	if f.Rating != nil && !f.Rating.contains(b.Rating) {
		return false
	}
	if f.VerifiedOnly && !b.Verified {
		return false
	}
	if f.IDs != nil && !slices.Contains(f.IDs, b.ID) {
		return false
	}
	return true
}

// Apply returns the brands matching f, preserving order.
func Apply(brands []models.Brand, f Filter) []models.Brand {
	out := make([]models.Brand, 0, len(brands))
	for _, b := range brands {
		if f.match(b) {
			out = append(out, b)
		}
	}
	return out
}

type SortKey string

const (
	SortRating  SortKey = "rating"
	SortReviews SortKey = "reviews"
	SortName    SortKey = "name"
	SortNewest  SortKey = "newest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortRating, SortReviews, SortName, SortNewest:
		return k, nil
	case "":
		return SortRating, nil
	default:
		return "", fmt.Errorf("unknown sort %q (rating, reviews, name, newest)", s)
	}
}

// Sort returns a sorted copy of brands. Rating, reviews and newest order
// descending, name ascending; ties keep their input order.
func Sort(brands []models.Brand, key SortKey) []models.Brand {
	out := slices.Clone(brands)

	var less func(a, b models.Brand) int
	switch key {
	case SortReviews:
		less = func(a, b models.Brand) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	case SortName:
		less = func(a, b models.Brand) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortNewest:
		less = func(a, b models.Brand) int { return b.CreatedAt.Compare(a.CreatedAt) }
	default:
		less = func(a, b models.Brand) int { return cmp.Compare(b.Rating, a.Rating) }
	}

	slices.SortStableFunc(out, less)
	return out
}
