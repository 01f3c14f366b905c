package directory

import (
	"errors"
	"slices"

	"github.com/tellbrandz/tbz/internal/client/models"
)

// MaxCompared is how many brands can be compared side by side.
const MaxCompared = 3

var (
	ErrCompareFull     = errors.New("comparison is full")
	ErrAlreadyCompared = errors.New("brand is already being compared")
)

// Comparison is the set of brands picked for side-by-side viewing.
type Comparison struct {
	brands []models.Brand
}

func (c *Comparison) Add(b models.Brand) error {
	if c.Contains(b.ID) {
		return ErrAlreadyCompared
	}
	if len(c.brands) >= MaxCompared {
		return ErrCompareFull
	}
	c.brands = append(c.brands, b)
	return nil
}

// Remove drops the brand with id and reports whether it was present.
func (c *Comparison) Remove(id string) bool {
	i := slices.IndexFunc(c.brands, func(b models.Brand) bool { return b.ID == id })
	if i < 0 {
		return false
	}
	c.brands = slices.Delete(c.brands, i, i+1)
	return true
}

func (c *Comparison) Contains(id string) bool {
	return slices.ContainsFunc(c.brands, func(b models.Brand) bool { return b.ID == id })
}

func (c *Comparison) Brands() []models.Brand {
	return slices.Clone(c.brands)
}

func (c *Comparison) Clear() {
	c.brands = nil
}
