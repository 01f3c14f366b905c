// Package favorites keeps the user's favourite brand ids on this device.
package favorites

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/localstore"
)

const Key = "tellbrandz_favorites"

// List is the persisted favourites list. Each mutation rewrites the whole
// blob; the key has no other writer.
type List struct {
	store localstore.Store

	mu sync.Mutex
}

func New(store localstore.Store) *List {
	return &List{store: store}
}

func (l *List) load(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := localstore.GetJSON(ctx, l.store, Key, &ids); err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	return ids, nil
}

// IDs returns the favourite brand ids in insertion order.
func (l *List) IDs(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *List) IsFavorite(ctx context.Context, brandID string) (bool, error) {
	ids, err := l.IDs(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, brandID), nil
}

// Toggle adds brandID when absent and removes it otherwise. It reports
// whether the brand is a favourite afterwards.
func (l *List) Toggle(ctx context.Context, brandID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	added := false
	if i := slices.Index(ids, brandID); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, brandID)
		added = true
	}

	if ids == nil {
		ids = []string{}
	}
	if err := localstore.SetJSON(ctx, l.store, Key, ids); err != nil {
		return false, fmt.Errorf("save favorites: %w", err)
	}
	return added, nil
}
