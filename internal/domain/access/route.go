package access

import (
	"strings"

	"gymhub/internal/domain/account"
)

// Route identifies a navigable view.
type Route int

// Routes known to the portal. RouteUnknown is the result of resolving a path
// that matches none of them.
const (
	RouteUnknown Route = iota
	RouteHome
	RouteSignIn
	RouteSignUp
	RouteClasses
	RouteShop
	RouteDashboard
	RouteProfile
	RouteCart
	RouteBooking
	RouteCheckIn
	RouteTrainer
	RouteAdmin
	RouteAdminMembers
	RouteAdminTrainers
	RouteAdminClasses
	RouteAdminProducts
	RouteAdminPlans
	RouteAdminBranches
	RouteBranchSelect
)

// PolicyKind tags the variant of a Policy.
type PolicyKind int

const (
	// PolicyPublic admits everyone.
	PolicyPublic PolicyKind = iota
	// PolicyAuthenticated admits any signed-in role.
	PolicyAuthenticated
	// PolicyRoles admits signed-in identities whose role is in Roles.
	PolicyRoles
)

// Policy is the access requirement for a route.
type Policy struct {
	Kind  PolicyKind
	Roles []account.Role
}

// Public admits everyone.
func Public() Policy { return Policy{Kind: PolicyPublic} }

// Authenticated admits any signed-in role.
func Authenticated() Policy { return Policy{Kind: PolicyAuthenticated} }

// Roles admits only the listed roles.
func Roles(roles ...account.Role) Policy {
	return Policy{Kind: PolicyRoles, Roles: roles}
}

// RequiresAuth reports whether a session must be present.
func (p Policy) RequiresAuth() bool {
	return p.Kind != PolicyPublic
}

// Permits reports whether role is admitted by a role-restricted policy.
// Non-role policies permit every role.
func (p Policy) Permits(role account.Role) bool {
	if p.Kind != PolicyRoles {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Access describes one route: where it lives, who may see it, and whether
// it is scoped to the selected branch.
type Access struct {
	Name   string
	Path   string
	Policy Policy
	// BranchScoped routes need a selected branch once the catalog holds
	// more than one.
	BranchScoped bool
}

var table = map[Route]Access{
	RouteHome:          {Name: "home", Path: "/", Policy: Public()},
	RouteSignIn:        {Name: "signin", Path: "/signin", Policy: Public()},
	RouteSignUp:        {Name: "signup", Path: "/signup", Policy: Public()},
	RouteClasses:       {Name: "classes", Path: "/classes", Policy: Public()},
	RouteShop:          {Name: "shop", Path: "/shop", Policy: Public()},
	RouteDashboard:     {Name: "dashboard", Path: "/dashboard", Policy: Authenticated()},
	RouteProfile:       {Name: "profile", Path: "/profile", Policy: Authenticated()},
	RouteCart:          {Name: "cart", Path: "/cart", Policy: Authenticated()},
	RouteBooking:       {Name: "booking", Path: "/booking", Policy: Roles(account.RoleMember)},
	RouteCheckIn:       {Name: "checkin", Path: "/checkin", Policy: Roles(account.RoleMember, account.RoleTrainer)},
	RouteTrainer:       {Name: "trainer_dashboard", Path: "/trainer", Policy: Roles(account.RoleTrainer)},
	RouteAdmin:         {Name: "admin_dashboard", Path: "/admin", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminMembers:  {Name: "admin_members", Path: "/admin/members", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminTrainers: {Name: "admin_trainers", Path: "/admin/trainers", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminClasses:  {Name: "admin_classes", Path: "/admin/classes", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminProducts: {Name: "admin_products", Path: "/admin/products", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminPlans:    {Name: "admin_plans", Path: "/admin/plans", Policy: Roles(account.RoleAdmin), BranchScoped: true},
	RouteAdminBranches: {Name: "admin_branches", Path: "/admin/branches", Policy: Roles(account.RoleAdmin)},
	RouteBranchSelect:  {Name: "branch_select", Path: "/admin/branches/select", Policy: Roles(account.RoleAdmin)},
}

// Lookup returns the access descriptor for r.
func Lookup(r Route) (Access, bool) {
	a, ok := table[r]
	return a, ok
}

// Routes returns every known route in declaration order.
func Routes() []Route {
	out := make([]Route, 0, len(table))
	for r := RouteHome; r <= RouteBranchSelect; r++ {
		out = append(out, r)
	}
	return out
}

// Path returns the canonical path of r, or "" for RouteUnknown.
func (r Route) Path() string {
	return table[r].Path
}

// String returns the route's view name.
func (r Route) String() string {
	if a, ok := table[r]; ok {
		return a.Name
	}
	return "unknown"
}

// Resolve maps a request path to a route. Paths beneath a route resolve to
// the longest route whose path is a prefix on a segment boundary, so
// /admin/members/42 is RouteAdminMembers. "/" only matches exactly.
func Resolve(path string) Route {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	best, bestLen := RouteUnknown, 0
	for r, a := range table {
		if a.Path == path {
			return r
		}
		if a.Path == "/" {
			continue
		}
		if strings.HasPrefix(path, a.Path+"/") && len(a.Path) > bestLen {
			best, bestLen = r, len(a.Path)
		}
	}
	return best
}
