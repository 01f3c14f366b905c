// Package onboarding persists the first-run flags that gate the welcome
// sequence and the contextual form tutorial.
//
// The progression is one-directional:
//
//	not-onboarded -> onboarded, tutorial unseen -> onboarded, tutorial seen
//
// Reset is the only way back and exists for support and tests.
package onboarding

import (
	"context"
	"fmt"
	"sync"

	"github.com/tellbrandz/tbz/internal/client/localstore"
	"github.com/tellbrandz/tbz/internal/logging"
)

// Storage keys. The legacy key is migrated once and then removed.
const (
	StateKey  = "tellbrandz_onboarding_v2"
	LegacyKey = "tellbrandz_onboarding"
)

type State struct {
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
	HasCreatedFirstTell    bool `json:"hasCreatedFirstTell"`
	HasViewedTutorial      bool `json:"hasViewedTutorial"`
}

// ShouldShowOnboarding is true until the welcome sequence is completed.
func (s State) ShouldShowOnboarding() bool {
	return !s.HasCompletedOnboarding
}

// ShouldShowTutorial is true once onboarding is complete and the tutorial
// has not been viewed yet.
func (s State) ShouldShowTutorial() bool {
	return s.HasCompletedOnboarding && !s.HasViewedTutorial
}

// Machine reads and writes State through a local store. Every mutation is a
// wholesale read-modify-write of the single blob.
type Machine struct {
	store localstore.Store
	log   logging.Logger

	mu sync.Mutex
}

func New(store localstore.Store, log logging.Logger) *Machine {
	return &Machine{store: store, log: log.With("component", "onboarding")}
}

// Load returns the persisted state, migrating the legacy key when the
// current one is absent. Absence of both yields the zero State.
func (m *Machine) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

func (m *Machine) load(ctx context.Context) (State, error) {
	var st State
	ok, err := localstore.GetJSON(ctx, m.store, StateKey, &st)
	if err != nil {
		return State{}, fmt.Errorf("load onboarding state: %w", err)
	}
	if ok {
		return st, nil
	}

	legacy, err := m.store.Get(ctx, LegacyKey)
	if err != nil {
		return State{}, fmt.Errorf("load legacy onboarding state: %w", err)
	}
	if legacy == nil {
		return State{}, nil
	}

	if err := m.store.Set(ctx, StateKey, legacy); err != nil {
		return State{}, fmt.Errorf("migrate onboarding state: %w", err)
	}
	if err := m.store.Delete(ctx, LegacyKey); err != nil {
		return State{}, fmt.Errorf("remove legacy onboarding state: %w", err)
	}
	m.log.Info(ctx, "migrated legacy onboarding state")

	if _, err := localstore.GetJSON(ctx, m.store, StateKey, &st); err != nil {
		m.log.Warn(ctx, "legacy onboarding state is unreadable, starting over", "error", err)
		return State{}, nil
	}
	return st, nil
}

func (m *Machine) update(ctx context.Context, fn func(*State)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, err := m.load(ctx)
	if err != nil {
		return State{}, err
	}
	fn(&st)
	if err := localstore.SetJSON(ctx, m.store, StateKey, st); err != nil {
		return State{}, fmt.Errorf("save onboarding state: %w", err)
	}
	return st, nil
}

func (m *Machine) CompleteOnboarding(ctx context.Context) (State, error) {
	return m.update(ctx, func(s *State) { s.HasCompletedOnboarding = true })
}

func (m *Machine) MarkFirstTellCreated(ctx context.Context) (State, error) {
	return m.update(ctx, func(s *State) { s.HasCreatedFirstTell = true })
}

func (m *Machine) MarkTutorialViewed(ctx context.Context) (State, error) {
	return m.update(ctx, func(s *State) { s.HasViewedTutorial = true })
}

// Reset restores the initial state.
func (m *Machine) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, StateKey); err != nil {
		return fmt.Errorf("reset onboarding state: %w", err)
	}
	return m.store.Delete(ctx, LegacyKey)
}
