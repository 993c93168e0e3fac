package access

import (
	"gymhub/internal/domain/branch"
	"gymhub/internal/domain/session"
)

// Redirect targets used by the gate.
const (
	SignInPath       = "/signin"
	HomePath         = "/"
	BranchSelectPath = "/admin/branches/select"
)

// Kind is the outcome variant of a gate decision.
type Kind int

const (
	Render Kind = iota
	Redirect
)

// Reason records which rule produced a decision, for logging.
type Reason string

const (
	ReasonAllowed        Reason = "allowed"
	ReasonUnknownRoute   Reason = "unknown_route"
	ReasonAnonymous      Reason = "anonymous"
	ReasonRoleDenied     Reason = "role_denied"
	ReasonBranchRequired Reason = "branch_required"
	ReasonCatalogLoading Reason = "catalog_loading"
	ReasonBranchSelected Reason = "branch_selected"
	ReasonSingleBranch   Reason = "single_branch"
)

// Decision is the gate's answer for one navigation request.
type Decision struct {
	Kind   Kind
	Route  Route
	Target string // redirect target; empty for Render
	Reason Reason
}

// IsRedirect reports whether the request must be redirected.
func (d Decision) IsRedirect() bool {
	return d.Kind == Redirect
}

func render(r Route, why Reason) Decision {
	return Decision{Kind: Render, Route: r, Reason: why}
}

func redirect(r Route, target string, why Reason) Decision {
	return Decision{Kind: Redirect, Route: r, Target: target, Reason: why}
}

// Decide resolves a navigation request against the session and the branch
// context. Rules are evaluated in order and the first match wins:
//
//  1. route needs a session and none is present: redirect to sign-in
//  2. route restricts roles and the identity is missing or not permitted:
//     redirect home
//  3. route is branch-scoped, the catalog has more than one branch and none
//     is selected: redirect to branch selection. An empty catalog renders.
//  4. otherwise render
//
// Unknown routes render. Decide is pure.
func Decide(sess session.Session, bc branch.Context, route Route) Decision {
	a, ok := table[route]
	if !ok {
		return render(route, ReasonUnknownRoute)
	}

	if a.Policy.RequiresAuth() && !sess.IsAuthenticated() {
		return redirect(route, SignInPath, ReasonAnonymous)
	}

	if a.Policy.Kind == PolicyRoles {
		if sess.Identity == nil || !a.Policy.Permits(sess.Identity.Role) {
			return redirect(route, HomePath, ReasonRoleDenied)
		}
	}

	if !a.BranchScoped {
		return render(route, ReasonAllowed)
	}
	switch {
	case len(bc.Branches) == 0:
		return render(route, ReasonCatalogLoading)
	case bc.NeedsSelection():
		return redirect(route, BranchSelectPath, ReasonBranchRequired)
	case bc.Selected != nil:
		return render(route, ReasonBranchSelected)
	default:
		return render(route, ReasonSingleBranch)
	}
}
