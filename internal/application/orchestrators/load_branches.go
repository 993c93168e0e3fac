package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymhub/internal/domain/branch"
)

// BranchSource is the read side of the branch catalog.
type BranchSource interface {
	List(ctx context.Context) ([]branch.Branch, error)
}

// BranchContext is the per-device branch context a load writes into.
type BranchContext interface {
	State() branch.Context
	SetBranches(ctx context.Context, list []branch.Branch)
	SelectBranch(ctx context.Context, b *branch.Branch) bool
}

// LoadBranchesDeps holds dependencies for LoadBranches.
type LoadBranchesDeps struct {
	Branches BranchSource
	Context  BranchContext
}

// ExecuteLoadBranches refreshes the device's catalog from the branch store.
// PRE: deps are non-nil
// POST: The catalog matches the store; a dangling selection is cleared; a
// catalog of exactly one branch with nothing selected has that branch selected
func ExecuteLoadBranches(ctx context.Context, deps LoadBranchesDeps) (branch.Context, error) {
	list, err := deps.Branches.List(ctx)
	if err != nil {
		return deps.Context.State(), fmt.Errorf("load branches: %w", err)
	}

	deps.Context.SetBranches(ctx, list)
	state := deps.Context.State()
	if len(state.Branches) == 1 && state.Selected == nil {
		only := state.Branches[0]
		deps.Context.SelectBranch(ctx, &only)
		state = deps.Context.State()
	}

	slog.Debug("branches_loaded", "count", len(state.Branches), "selected", state.Selected != nil)
	return state, nil
}
