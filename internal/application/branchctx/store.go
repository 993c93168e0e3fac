// Package branchctx holds the per-browser branch catalog and selection used by
// admin views. State transitions live on branch.Context; this package owns
// their persistence.
package branchctx

import (
	"context"
	"sync"

	"gymhub/internal/adapters/storage/clientstate"
	"gymhub/internal/application/persist"
	"gymhub/internal/domain/branch"
)

// Namespace is the fixed record namespace of the branch context.
const Namespace = "gym-branch-storage"

// NewSlot creates the persistence slot for branch contexts.
func NewSlot(store clientstate.Store) *persist.Slot[branch.Context] {
	return persist.NewSlot[branch.Context](store, Namespace)
}

// Store is the branch context of one device.
// Every mutation is written through to the slot before returning.
type Store struct {
	mu       sync.Mutex
	slot     *persist.Slot[branch.Context]
	deviceID string
	state    branch.Context
}

// Open rehydrates the device's branch context.
// POST: A missing or unusable record yields the empty context; a record whose
// selection is not in its catalog has the selection cleared
func Open(ctx context.Context, slot *persist.Slot[branch.Context], deviceID string) *Store {
	return &Store{
		slot:     slot,
		deviceID: deviceID,
		state:    slot.Load(ctx, deviceID).Normalize(),
	}
}

// State returns a snapshot of the context.
func (s *Store) State() branch.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := branch.Context{Branches: append([]branch.Branch(nil), s.state.Branches...)}
	if s.state.Selected != nil {
		sel := *s.state.Selected
		out.Selected = &sel
	}
	return out
}

// SetBranches replaces the catalog.
// POST: A selection whose id is not in list is cleared
func (s *Store) SetBranches(ctx context.Context, list []branch.Branch) {
	s.mu.Lock()
	s.state = s.state.WithBranches(list)
	state := s.state
	s.mu.Unlock()
	s.slot.Save(ctx, s.deviceID, state)
}

// SelectBranch sets the selection, or clears it when b is nil.
// POST: Returns false and changes nothing if b is not in the catalog
func (s *Store) SelectBranch(ctx context.Context, b *branch.Branch) bool {
	s.mu.Lock()
	next, ok := s.state.WithSelection(b)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.mu.Unlock()
	s.slot.Save(ctx, s.deviceID, next)
	return true
}

// SelectByID selects the catalog branch with the given id.
func (s *Store) SelectByID(ctx context.Context, id string) bool {
	s.mu.Lock()
	b, ok := s.state.Find(id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	return s.SelectBranch(ctx, &b)
}

// HasMultipleBranches reports whether the loaded catalog offers a choice.
func (s *Store) HasMultipleBranches() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HasMultipleBranches()
}

// Reset clears catalog and selection and removes the persisted record.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state = branch.Context{}
	s.mu.Unlock()
	s.slot.Delete(ctx, s.deviceID)
}
