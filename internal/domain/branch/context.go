package branch

// Context is the branch catalog known to one browser plus its selection.
// The zero value is the empty default: no branches, nothing selected.
//
// INVARIANT: Selected, when non-nil, has the ID of a branch in Branches.
type Context struct {
	Branches []Branch `json:"branches"`
	Selected *Branch  `json:"selectedBranch"`
}

// Find returns the catalog entry with the given id.
func (c Context) Find(id string) (Branch, bool) {
	for _, b := range c.Branches {
		if b.ID == id {
			return b, true
		}
	}
	return Branch{}, false
}

// HasMultipleBranches reports whether the catalog holds more than one branch.
func (c Context) HasMultipleBranches() bool {
	return len(c.Branches) > 1
}

// NeedsSelection reports whether the user must pick a branch before admin
// views can render. An empty catalog never needs selection: it is still loading.
func (c Context) NeedsSelection() bool {
	return c.HasMultipleBranches() && c.Selected == nil
}

// WithBranches returns a context whose catalog is list.
// The selection survives if its id is still present, refreshed to the new
// record; otherwise it is cleared.
func (c Context) WithBranches(list []Branch) Context {
	next := Context{Branches: append([]Branch(nil), list...)}
	if c.Selected != nil {
		if b, ok := next.Find(c.Selected.ID); ok {
			next.Selected = &b
		}
	}
	return next
}

// WithSelection returns a context with b selected, or with the selection
// cleared when b is nil. A branch that is not in the catalog is rejected and
// the context is returned unchanged with ok=false.
func (c Context) WithSelection(b *Branch) (Context, bool) {
	if b == nil {
		return Context{Branches: c.Branches}, true
	}
	found, ok := c.Find(b.ID)
	if !ok {
		return c, false
	}
	return Context{Branches: c.Branches, Selected: &found}, true
}

// Normalize enforces the selection invariant on a context from an untrusted
// source, such as a rehydrated record.
func (c Context) Normalize() Context {
	return c.WithBranches(c.Branches)
}
