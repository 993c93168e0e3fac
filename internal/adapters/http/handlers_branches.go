package web

import (
	"net/http"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/access"
	"gymhub/internal/domain/branch"
)

// loadBranches refreshes the device's branch catalog from the branch store.
func loadBranches(r *http.Request) (branch.Context, error) {
	dev, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		return branch.Context{}, errNoDevice
	}
	return orchestrators.ExecuteLoadBranches(r.Context(), orchestrators.LoadBranchesDeps{
		Branches: stores.BranchStore,
		Context:  dev.Branch,
	})
}

// catalog returns the device's branch context, loading it when empty.
func catalog(r *http.Request) (branch.Context, error) {
	dev, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		return branch.Context{}, errNoDevice
	}
	if bc := dev.Branch.State(); len(bc.Branches) > 0 {
		return bc, nil
	}
	return loadBranches(r)
}

type branchesView struct {
	Branches            []branch.Branch `json:"branches"`
	Selected            *branch.Branch  `json:"selected,omitempty"`
	HasMultipleBranches bool            `json:"hasMultipleBranches"`
	Next                string          `json:"next,omitempty"`
}

func newBranchesView(bc branch.Context) branchesView {
	return branchesView{
		Branches:            bc.Branches,
		Selected:            bc.Selected,
		HasMultipleBranches: bc.HasMultipleBranches(),
	}
}

// handleAPIBranches handles GET /api/branches (admin). ?refresh=1 reloads
// the catalog from the store.
func handleAPIBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if _, ok := requireDevice(w, r); !ok {
		return
	}

	load := catalog
	if r.URL.Query().Get("refresh") != "" {
		load = loadBranches
	}
	bc, err := load(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newBranchesView(bc))
}

type selectBranchRequest struct {
	BranchID string `json:"branchId"`
}

// handleAPISelectBranch handles POST /api/branches/select (admin).
// An empty branchId clears the selection.
func handleAPISelectBranch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	dev, ok := requireDevice(w, r)
	if !ok {
		return
	}

	var req selectBranchRequest
	if err := strictDecode(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := catalog(r); err != nil {
		internalError(w, err)
		return
	}

	if req.BranchID == "" {
		dev.Branch.SelectBranch(r.Context(), nil)
	} else if !dev.Branch.SelectByID(r.Context(), req.BranchID) {
		jsonError(w, http.StatusNotFound, "branch not in catalog")
		return
	}
	writeJSON(w, http.StatusOK, newBranchesView(dev.Branch.State()))
}

// handleBranchSelect handles GET (chooser) and POST (form select) for
// /admin/branches/select
func handleBranchSelect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !authorizeView(w, r, access.RouteBranchSelect) {
		return
	}
	dev, ok := requireDevice(w, r)
	if !ok {
		return
	}
	bc, err := catalog(r)
	if err != nil {
		internalError(w, err)
		return
	}

	if r.Method == http.MethodGet {
		view := newBranchesView(bc)
		view.Next = r.URL.Query().Get("next")
		render(w, r, http.StatusOK, access.RouteBranchSelect, "branch_select.html", view, "")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	next := r.FormValue("next")
	if !dev.Branch.SelectByID(r.Context(), r.FormValue("branch_id")) {
		view := newBranchesView(bc)
		view.Next = next
		render(w, r, http.StatusBadRequest, access.RouteBranchSelect, "branch_select.html", view, "Choose one of the listed branches")
		return
	}
	http.Redirect(w, r, safeNext(next, access.RouteAdmin.Path()), http.StatusSeeOther)
}

// loadBranchesView feeds the admin branch overview.
func loadBranchesView(r *http.Request) (any, error) {
	bc, err := catalog(r)
	if err != nil {
		return nil, err
	}
	return newBranchesView(bc), nil
}
