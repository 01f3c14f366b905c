// Package preferences stores small per-device settings.
package preferences

import (
	"context"
	"fmt"

	"github.com/tellbrandz/tbz/internal/client/localstore"
)

const CountryKey = "tellbrandz_selected_country"

type Preferences struct {
	store localstore.Store
}

func New(store localstore.Store) *Preferences {
	return &Preferences{store: store}
}

// Country returns the selected country code, or "" when none is set.
func (p *Preferences) Country(ctx context.Context) (string, error) {
	var c string
	if _, err := localstore.GetJSON(ctx, p.store, CountryKey, &c); err != nil {
		return "", fmt.Errorf("load country: %w", err)
	}
	return c, nil
}

// SetCountry stores code; an empty code clears the selection.
func (p *Preferences) SetCountry(ctx context.Context, code string) error {
	if code == "" {
		return p.store.Delete(ctx, CountryKey)
	}
	if err := localstore.SetJSON(ctx, p.store, CountryKey, code); err != nil {
		return fmt.Errorf("save country: %w", err)
	}
	return nil
}
