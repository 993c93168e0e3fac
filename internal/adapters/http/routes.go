package web

import (
	"net/http"

	"gymhub/internal/domain/access"
	"gymhub/internal/domain/account"
)

// registerRoutes wires every view of the route table plus the JSON API.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/healthz", handleHealthz)

	mux.HandleFunc("/signin", handleSignIn)
	mux.HandleFunc("/signup", handleSignUp)
	mux.HandleFunc("/logout", handleLogout)

	for _, route := range []access.Route{
		access.RouteClasses,
		access.RouteDashboard,
		access.RouteBooking,
		access.RouteCheckIn,
		access.RouteTrainer,
		access.RouteAdmin,
		access.RouteAdminClasses,
		access.RouteAdminPlans,
	} {
		mux.HandleFunc(route.Path(), handleView(route, "view.html", nil))
	}
	mux.HandleFunc(access.RouteProfile.Path(), handleView(access.RouteProfile, "profile.html", nil))
	mux.HandleFunc(access.RouteShop.Path(), handleView(access.RouteShop, "shop.html", loadShopView))
	mux.HandleFunc(access.RouteCart.Path(), handleView(access.RouteCart, "cart.html", loadCartView))
	mux.HandleFunc(access.RouteAdminProducts.Path(), handleView(access.RouteAdminProducts, "shop.html", loadShopView))
	mux.HandleFunc(access.RouteAdminBranches.Path(), handleView(access.RouteAdminBranches, "branches.html", loadBranchesView))
	mux.HandleFunc(access.RouteBranchSelect.Path(), handleBranchSelect)

	members := handleAdminAccount(access.RouteAdminMembers, account.RoleMember)
	trainers := handleAdminAccount(access.RouteAdminTrainers, account.RoleTrainer)
	mux.HandleFunc(access.RouteAdminMembers.Path(), members)
	mux.HandleFunc(access.RouteAdminMembers.Path()+"/", members)
	mux.HandleFunc(access.RouteAdminTrainers.Path(), trainers)
	mux.HandleFunc(access.RouteAdminTrainers.Path()+"/", trainers)

	mux.HandleFunc("/api/session", handleAPISession)
	mux.HandleFunc("/api/profile", handleAPIProfile)
	mux.HandleFunc("/api/profile/password", handleAPIChangePassword)
	mux.HandleFunc("/api/branches", handleAPIBranches)
	mux.HandleFunc("/api/branches/select", handleAPISelectBranch)
	mux.HandleFunc("/api/products", handleAPIProducts)
	mux.HandleFunc("/api/cart", handleAPICart)
	mux.HandleFunc("/api/admin/members", handleAPIAdminAccounts(account.RoleMember))
	mux.HandleFunc("/api/admin/trainers", handleAPIAdminAccounts(account.RoleTrainer))
	mux.HandleFunc("/api/admin/perf", handleAPIAdminPerf)
}

var homeView = handleView(access.RouteHome, "home.html", nil)

// handleHome serves "/" exactly; every other unmatched path is a 404.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	homeView(w, r)
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
