package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/domain/access"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/branch"
	"gymhub/internal/domain/cart"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var errNoDevice = errors.New("request carries no device")

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// jsonError writes {"error": msg}.
func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func formatMoney(cents int64) string {
	return money.New(cents, cart.Currency).Display()
}

// fieldError turns a failed validation rule into form copy.
func fieldError(rule string) string {
	switch rule {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "min":
		return "Too short"
	case "max":
		return "Too long"
	case "oneof":
		return "Choose one of the listed options"
	default:
		return "Invalid value"
	}
}

// templateFuncs returns the helpers pages can call. A nil request yields an
// anonymous set used only for parsing.
func templateFuncs(r *http.Request) template.FuncMap {
	var identity *account.Identity
	var selected *branch.Branch
	if r != nil {
		identity = middleware.SessionFromContext(r.Context()).Identity
		selected = middleware.BranchContext(r.Context()).Selected
	}
	return template.FuncMap{
		"isLoggedIn": func() bool { return identity != nil },
		"currentRole": func() string {
			if identity == nil {
				return ""
			}
			return string(identity.Role)
		},
		"currentName": func() string {
			if identity == nil {
				return ""
			}
			return identity.Name
		},
		"selectedBranch": func() *branch.Branch { return selected },
		"csrfField": func() template.HTML {
			if r == nil {
				return ""
			}
			return csrf.TemplateField(r)
		},
		"renderMarkdown": renderMarkdown,
		"money":          formatMoney,
		"fieldError":     fieldError,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
	}
}

// pages holds one parsed layout+page set per page template.
var pages = mustParsePages(
	"home.html",
	"signin.html",
	"signup.html",
	"view.html",
	"profile.html",
	"shop.html",
	"cart.html",
	"accounts.html",
	"account.html",
	"branches.html",
	"branch_select.html",
)

func mustParsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.New("layout.html").
			Funcs(templateFuncs(nil)).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return out
}

// page is the model every view renders, as HTML or as JSON.
type page struct {
	Title    string            `json:"title"`
	View     string            `json:"view"`
	Identity *account.Identity `json:"identity,omitempty"`
	Branch   *branch.Branch    `json:"branch,omitempty"`
	Data     any               `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var titles = map[access.Route]string{
	access.RouteHome:          "GymHub",
	access.RouteSignIn:        "Sign in",
	access.RouteSignUp:        "Join GymHub",
	access.RouteClasses:       "Classes",
	access.RouteShop:          "Shop",
	access.RouteDashboard:     "Dashboard",
	access.RouteProfile:       "Profile",
	access.RouteCart:          "Cart",
	access.RouteBooking:       "Book a class",
	access.RouteCheckIn:       "Check in",
	access.RouteTrainer:       "Trainer dashboard",
	access.RouteAdmin:         "Admin",
	access.RouteAdminMembers:  "Members",
	access.RouteAdminTrainers: "Trainers",
	access.RouteAdminClasses:  "Class schedule",
	access.RouteAdminProducts: "Products",
	access.RouteAdminPlans:    "Membership plans",
	access.RouteAdminBranches: "Branches",
	access.RouteBranchSelect:  "Choose a branch",
}

// render writes the page for route as HTML when the client accepts it,
// and as JSON otherwise.
func render(w http.ResponseWriter, r *http.Request, status int, route access.Route, tmpl string, data any, errMsg string) {
	p := page{
		Title:    titles[route],
		View:     route.String(),
		Identity: middleware.SessionFromContext(r.Context()).Identity,
		Branch:   middleware.BranchContext(r.Context()).Selected,
		Data:     data,
		Error:    errMsg,
	}
	if !isHTMLRequest(r) {
		writeJSON(w, status, p)
		return
	}

	base, ok := pages[tmpl]
	if !ok {
		internalError(w, errors.New("unknown template "+tmpl))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Funcs(templateFuncs(r)).Execute(&buf, p); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// viewLoader produces the Data of a view.
type viewLoader func(r *http.Request) (any, error)

// handleView serves a read-only view of route.
func handleView(route access.Route, tmpl string, load viewLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !authorizeView(w, r, route) {
			return
		}
		var data any
		if load != nil {
			var err error
			if data, err = load(r); err != nil {
				if errors.Is(err, errNotFound) {
					http.NotFound(w, r)
					return
				}
				internalError(w, err)
				return
			}
		}
		render(w, r, http.StatusOK, route, tmpl, data, "")
	}
}

var errNotFound = errors.New("not found")

// authorizeView decides access to route for the request. An admin whose
// branch catalog is still empty has it loaded first and the decision is
// taken again against the loaded catalog.
// POST: Returns false after writing a redirect or error response
func authorizeView(w http.ResponseWriter, r *http.Request, route access.Route) bool {
	sess := middleware.SessionFromContext(r.Context())
	bc := middleware.BranchContext(r.Context())
	if needsCatalog(route, sess.Role(), bc) {
		loaded, err := loadBranches(r)
		if err != nil && !errors.Is(err, errNoDevice) {
			internalError(w, err)
			return false
		}
		bc = loaded
	}
	if d := access.Decide(sess, bc, route); d.IsRedirect() {
		middleware.Redirect(w, r, perfCollector, d)
		return false
	}
	return true
}

func needsCatalog(route access.Route, role account.Role, bc branch.Context) bool {
	if role != account.RoleAdmin || len(bc.Branches) > 0 {
		return false
	}
	a, ok := access.Lookup(route)
	return ok && (a.BranchScoped || route == access.RouteAdminBranches || route == access.RouteBranchSelect)
}

// requireSession returns the signed-in session or writes 401.
func requireSession(w http.ResponseWriter, r *http.Request) (*account.Identity, string, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if !sess.IsAuthenticated() || sess.Identity == nil {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return nil, "", false
	}
	return sess.Identity, sess.Token, true
}

// requireAdmin returns the admin identity or writes 401/403.
func requireAdmin(w http.ResponseWriter, r *http.Request) (*account.Identity, bool) {
	identity, _, ok := requireSession(w, r)
	if !ok {
		return nil, false
	}
	if identity.Role != account.RoleAdmin {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", identity.ID, "role", string(identity.Role), "required", "admin")
		jsonError(w, http.StatusForbidden, "forbidden")
		return nil, false
	}
	return identity, true
}

// requireDevice returns the request's device or writes 500.
func requireDevice(w http.ResponseWriter, r *http.Request) (*middleware.Device, bool) {
	dev, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		internalError(w, errNoDevice)
		return nil, false
	}
	return dev, true
}

// safeNext returns next when it is a local path, else fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
