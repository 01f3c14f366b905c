package workflows

import (
	"context"
	"slices"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/models"
	"github.com/tellbrandz/tbz/internal/client/records"
	"github.com/tellbrandz/tbz/internal/logging"
)

// TellFeed is the locally held list of tells shown to the user.
type TellFeed struct {
	repo   records.Repository
	filter records.TellFilter
	log    logging.Logger

	mu    sync.Mutex
	tells []models.Tell
	// gen increments on every local change or load so a slow fetch cannot
	// overwrite newer state.
	gen uint64
	wg  sync.WaitGroup
}

func NewTellFeed(repo records.Repository, filter records.TellFilter, log logging.Logger) *TellFeed {
	return &TellFeed{repo: repo, filter: filter, log: log.With("component", "feed")}
}

func (f *TellFeed) Tells() []models.Tell {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tells)
}

// Load replaces the feed with a fresh fetch.
func (f *TellFeed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	tells, err := f.repo.ListTells(ctx, f.filter)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen == f.gen {
		f.tells = tells
	}
	return nil
}

// Prepend splices t at the head of the feed, replacing any copy with the
// same id.
func (f *TellFeed) Prepend(t models.Tell) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.tells = slices.DeleteFunc(f.tells, func(x models.Tell) bool { return x.ID == t.ID })
	f.tells = append([]models.Tell{t}, f.tells...)
}

// RefetchAsync reloads the feed in the background. A failure keeps the
// current list and is only logged.
func (f *TellFeed) RefetchAsync(ctx context.Context) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.Load(ctx); err != nil {
			f.log.Warn(ctx, "background feed refresh failed", "error", err)
		}
	}()
}

// Wait blocks until background refetches have finished.
func (f *TellFeed) Wait() {
	f.wg.Wait()
}
