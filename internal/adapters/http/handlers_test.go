package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gymhub/internal/adapters/email"
	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/adapters/storage"
	accountStore "gymhub/internal/adapters/storage/account"
	branchStore "gymhub/internal/adapters/storage/branch"
	"gymhub/internal/adapters/storage/clientstate"
	productStore "gymhub/internal/adapters/storage/product"
	"gymhub/internal/application/branchctx"
	"gymhub/internal/application/cartctx"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/access"
	"gymhub/internal/domain/account"
	"gymhub/internal/domain/branch"
)

var (
	adminID   = account.Identity{ID: "admin-001", Name: "Ana Admin", Email: "ana@gymhub.test", Role: account.RoleAdmin}
	trainerID = account.Identity{ID: "trainer-001", Name: "Tom Trainer", Email: "tom@gymhub.test", Role: account.RoleTrainer}
	memberID  = account.Identity{ID: "member-001", Name: "Mia Member", Email: "mia@gymhub.test", Role: account.RoleMember}
)

// newTestStores opens an in-memory database seeded with the branch and
// product fixtures and resets the package globals.
func newTestStores(t *testing.T) *Stores {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := &Stores{
		AccountStore: accountStore.NewSQLiteStore(db),
		BranchStore:  branchStore.NewSQLiteStore(db),
		ProductStore: productStore.NewSQLiteStore(db),
	}
	ctx := context.Background()
	if err := orchestrators.ExecuteSeedBranches(ctx, s.BranchStore); err != nil {
		t.Fatalf("seed branches: %v", err)
	}
	if err := orchestrators.ExecuteSeedProducts(ctx, s.ProductStore); err != nil {
		t.Fatalf("seed products: %v", err)
	}

	stores = s
	sessions = middleware.NewSessionStore(time.Hour)
	perfCollector = perf.NewCollector(100)
	emailSender = nil
	return s
}

// newDevice opens fresh client-state stores for one simulated browser.
func newDevice(t *testing.T) *middleware.Device {
	t.Helper()
	mem := clientstate.NewMemoryStore()
	slots := middleware.DeviceSlots{Branch: branchctx.NewSlot(mem), Cart: cartctx.NewSlot(mem)}
	return slots.Open(context.Background(), uuid.NewString())
}

// authRequest builds a JSON request carrying a live session for identity
// (nil for anonymous) and the given device.
func authRequest(method, target, body string, identity *account.Identity, dev *middleware.Device) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return withState(req, identity, dev)
}

func formRequest(target string, form url.Values, identity *account.Identity, dev *middleware.Device) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withState(req, identity, dev)
}

func withState(req *http.Request, identity *account.Identity, dev *middleware.Device) *http.Request {
	ctx := req.Context()
	if identity != nil {
		token, err := sessions.Create(*identity)
		if err != nil {
			panic(err)
		}
		s, _ := sessions.Get(token)
		ctx = middleware.ContextWithSession(ctx, s)
	}
	if dev != nil {
		ctx = middleware.ContextWithDevice(ctx, dev)
	}
	return req.WithContext(ctx)
}

func seedAccount(t *testing.T, identity account.Identity, password string) {
	t.Helper()
	a := account.Account{
		ID: identity.ID, Name: identity.Name, Email: identity.Email, Phone: identity.Phone,
		Role: identity.Role, CreatedAt: time.Now(),
	}
	if password != "" {
		if err := a.SetPassword(password); err != nil {
			t.Fatal(err)
		}
	}
	if err := stores.AccountStore.Save(context.Background(), a); err != nil {
		t.Fatal(err)
	}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

type recordingSender struct {
	sent []email.SendRequest
}

func (s *recordingSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	s.sent = append(s.sent, req)
	return email.SendResult{MessageID: "test"}, nil
}

// --- Tests: /api/session ---

func TestHandleAPISession(t *testing.T) {
	newTestStores(t)

	rec := httptest.NewRecorder()
	handleAPISession(rec, authRequest("GET", "/api/session", "", nil, newDevice(t)))
	if got := decodeBody[sessionView](t, rec); got.Authenticated || got.Identity != nil {
		t.Errorf("anonymous session = %+v", got)
	}

	dev := newDevice(t)
	tee, _ := stores.ProductStore.GetByID(context.Background(), "prd-tee")
	dev.Cart.Add(context.Background(), tee, 2)
	rec = httptest.NewRecorder()
	handleAPISession(rec, authRequest("GET", "/api/session", "", &memberID, dev))
	got := decodeBody[sessionView](t, rec)
	if !got.Authenticated || got.Identity == nil || got.Identity.ID != memberID.ID {
		t.Errorf("member session = %+v", got)
	}
	if got.CartCount != 2 {
		t.Errorf("CartCount = %d, want 2", got.CartCount)
	}
}

// --- Tests: /signin /signup /logout ---

func TestHandleSignIn_POST(t *testing.T) {
	newTestStores(t)
	seedAccount(t, adminID, "correct horse battery")

	tests := []struct {
		name         string
		email        string
		password     string
		next         string
		wantStatus   int
		wantLocation string
	}{
		{"admin lands on admin", "ANA@gymhub.test", "correct horse battery", "", http.StatusSeeOther, "/admin"},
		{"next is honoured", "ana@gymhub.test", "correct horse battery", "/admin/members", http.StatusSeeOther, "/admin/members"},
		{"foreign next is ignored", "ana@gymhub.test", "correct horse battery", "//evil.example", http.StatusSeeOther, "/admin"},
		{"wrong password", "ana@gymhub.test", "wrong password!!", "", http.StatusUnauthorized, ""},
		{"unknown email", "nobody@gymhub.test", "correct horse battery", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"email": {tt.email}, "password": {tt.password}, "next": {tt.next}}
			rec := httptest.NewRecorder()
			handleSignIn(rec, formRequest("/signin", form, nil, newDevice(t)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			hasCookie := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == middleware.SessionCookieName && c.Value != "" {
					hasCookie = true
				}
			}
			if hasCookie != (tt.wantStatus == http.StatusSeeOther) {
				t.Errorf("session cookie set = %v", hasCookie)
			}
		})
	}
}

func TestHandleSignIn_GET_SignedInRedirects(t *testing.T) {
	newTestStores(t)
	rec := httptest.NewRecorder()
	handleSignIn(rec, authRequest("GET", "/signin", "", &memberID, newDevice(t)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleSignUp_POST(t *testing.T) {
	newTestStores(t)
	sender := &recordingSender{}
	emailSender = sender

	valid := url.Values{
		"name": {"Nia Newcomer"}, "email": {"nia@gymhub.test"},
		"password": {"long enough password"},
	}
	rec := httptest.NewRecorder()
	handleSignUp(rec, formRequest("/signup", valid, nil, newDevice(t)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d %q: %s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}
	if len(sender.sent) != 1 || sender.sent[0].To[0] != "nia@gymhub.test" {
		t.Errorf("welcome emails = %+v", sender.sent)
	}
	if _, err := stores.AccountStore.GetByEmail(context.Background(), "nia@gymhub.test"); err != nil {
		t.Errorf("account not saved: %v", err)
	}

	rec = httptest.NewRecorder()
	handleSignUp(rec, formRequest("/signup", valid, nil, newDevice(t)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	trainer := url.Values{
		"name": {"Tia Trainer"}, "email": {"tia@gymhub.test"},
		"password": {"long enough password"}, "role": {"trainer"},
	}
	rec = httptest.NewRecorder()
	handleSignUp(rec, formRequest("/signup", trainer, nil, newDevice(t)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("trainer self-registration status = %d, want 422", rec.Code)
	}
	if _, err := stores.AccountStore.GetByEmail(context.Background(), "tia@gymhub.test"); err == nil {
		t.Error("trainer self-registration saved an account")
	}

	invalid := url.Values{"name": {""}, "email": {"nope"}, "password": {"short"}, "role": {"admin"}}
	rec = httptest.NewRecorder()
	handleSignUp(rec, formRequest("/signup", invalid, nil, newDevice(t)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, want 422", rec.Code)
	}
	var body struct {
		Data signUpForm `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"Name", "Email", "Password", "Role"} {
		if _, ok := body.Data.Fields[field]; !ok {
			t.Errorf("field %s not reported in %v", field, body.Data.Fields)
		}
	}
}

// TestHandleLogout verifies the session, branch context and cart are all cleared.
func TestHandleLogout(t *testing.T) {
	newTestStores(t)
	ctx := context.Background()
	dev := newDevice(t)
	if _, err := loadBranches(authRequest("GET", "/admin", "", &adminID, dev)); err != nil {
		t.Fatal(err)
	}
	dev.Branch.SelectByID(ctx, "br-cuba")
	tee, _ := stores.ProductStore.GetByID(ctx, "prd-tee")
	dev.Cart.Add(ctx, tee, 1)

	req := authRequest("POST", "/logout", "", &adminID, dev)
	before := sessions.Len()
	rec := httptest.NewRecorder()
	handleLogout(rec, req)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/signin" {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if sessions.Len() != before-1 {
		t.Errorf("sessions = %d, want %d", sessions.Len(), before-1)
	}
	if bc := dev.Branch.State(); len(bc.Branches) != 0 || bc.Selected != nil {
		t.Errorf("branch context after logout = %+v", bc)
	}
	if n := dev.Cart.State().Count(); n != 0 {
		t.Errorf("cart count after logout = %d", n)
	}

	rec = httptest.NewRecorder()
	handleLogout(rec, httptest.NewRequest("GET", "/logout", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", rec.Code)
	}
}

// --- Tests: /api/profile ---

func TestHandleAPIProfile(t *testing.T) {
	newTestStores(t)
	seedAccount(t, memberID, "")
	seedAccount(t, trainerID, "")

	tests := []struct {
		name       string
		body       string
		identity   *account.Identity
		wantStatus int
	}{
		{"rename", `{"name":"Mia Renamed"}`, &memberID, http.StatusOK},
		{"empty patch", `{}`, &memberID, http.StatusBadRequest},
		{"blank name", `{"name":"  "}`, &memberID, http.StatusBadRequest},
		{"taken email", `{"email":"TOM@gymhub.test"}`, &memberID, http.StatusConflict},
		{"unknown field", `{"role":"admin"}`, &memberID, http.StatusBadRequest},
		{"anonymous", `{"name":"X"}`, nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authRequest("PATCH", "/api/profile", tt.body, tt.identity, newDevice(t))
			rec := httptest.NewRecorder()
			handleAPIProfile(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			token := middleware.SessionFromContext(req.Context()).Token
			s, _ := sessions.Get(token)
			if s.Identity.Name != "Mia Renamed" || s.Identity.Role != account.RoleMember {
				t.Errorf("session identity = %+v", s.Identity)
			}
		})
	}
}

func TestHandleAPIChangePassword(t *testing.T) {
	newTestStores(t)
	seedAccount(t, memberID, "original password")

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"wrong current", `{"currentPassword":"not the password","newPassword":"brand new password"}`, http.StatusForbidden},
		{"missing fields", `{"currentPassword":"original password"}`, http.StatusBadRequest},
		{"same password", `{"currentPassword":"original password","newPassword":"original password"}`, http.StatusBadRequest},
		{"too short", `{"currentPassword":"original password","newPassword":"short"}`, http.StatusBadRequest},
		{"changed", `{"currentPassword":"original password","newPassword":"brand new password"}`, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleAPIChangePassword(rec, authRequest("POST", "/api/profile/password", tt.body, &memberID, newDevice(t)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if _, err := orchestrators.ExecuteSignIn(context.Background(), orchestrators.SignInInput{
		Email: memberID.Email, Password: "brand new password",
	}, orchestrators.SignInDeps{AccountStore: stores.AccountStore}); err != nil {
		t.Errorf("sign in with new password: %v", err)
	}
}

// --- Tests: branch context ---

// TestAdminView_LoadsEmptyCatalog verifies an admin arriving with an empty
// catalog has it loaded and is then routed by the loaded catalog.
func TestAdminView_LoadsEmptyCatalog(t *testing.T) {
	newTestStores(t)

	dev := newDevice(t)
	rec := httptest.NewRecorder()
	handleView(access.RouteAdmin, "view.html", nil)(rec, authRequest("GET", "/admin", "", &adminID, dev))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/branches/select" {
		t.Fatalf("got %d %q, want redirect to branch selection", rec.Code, rec.Header().Get("Location"))
	}
	if n := len(dev.Branch.State().Branches); n != 3 {
		t.Errorf("catalog size = %d, want 3", n)
	}
	if perfCollector.TotalRecorded() != 1 {
		t.Errorf("redirect not recorded")
	}

	dev.Branch.SelectByID(context.Background(), "br-ponsonby")
	rec = httptest.NewRecorder()
	handleView(access.RouteAdmin, "view.html", nil)(rec, authRequest("GET", "/admin", "", &adminID, dev))
	if rec.Code != http.StatusOK {
		t.Errorf("with selection status = %d, want 200", rec.Code)
	}
}

func TestAdminView_SingleBranchAutoSelects(t *testing.T) {
	s := newTestStores(t)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatal(err)
	}
	s.BranchStore = branchStore.NewSQLiteStore(db)
	if err := s.BranchStore.Save(context.Background(), branch.Branch{
		ID: "br-only", Name: "Only Club", Status: branch.StatusActive,
		Address: branch.Address{Street: "1 Main St", City: "Hamilton", Country: "NZ"},
	}); err != nil {
		t.Fatal(err)
	}

	dev := newDevice(t)
	rec := httptest.NewRecorder()
	handleView(access.RouteAdmin, "view.html", nil)(rec, authRequest("GET", "/admin", "", &adminID, dev))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sel := dev.Branch.State().Selected; sel == nil || sel.ID != "br-only" {
		t.Errorf("Selected = %+v, want br-only", sel)
	}
}

func TestHandleBranchSelect_Form(t *testing.T) {
	newTestStores(t)

	tests := []struct {
		name         string
		branchID     string
		next         string
		wantStatus   int
		wantLocation string
	}{
		{"valid", "br-cuba", "", http.StatusSeeOther, "/admin"},
		{"valid with next", "br-cuba", "/admin/members", http.StatusSeeOther, "/admin/members"},
		{"unknown branch", "br-mars", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := newDevice(t)
			form := url.Values{"branch_id": {tt.branchID}, "next": {tt.next}}
			rec := httptest.NewRecorder()
			handleBranchSelect(rec, formRequest("/admin/branches/select", form, &adminID, dev))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
			selected := dev.Branch.State().Selected != nil
			if selected != (tt.wantStatus == http.StatusSeeOther) {
				t.Errorf("selected = %v", selected)
			}
		})
	}

	rec := httptest.NewRecorder()
	handleBranchSelect(rec, formRequest("/admin/branches/select", url.Values{"branch_id": {"br-cuba"}}, &memberID, newDevice(t)))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Errorf("member got %d %q, want redirect home", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleAPIBranches(t *testing.T) {
	newTestStores(t)
	dev := newDevice(t)

	rec := httptest.NewRecorder()
	handleAPIBranches(rec, authRequest("GET", "/api/branches", "", &adminID, dev))
	got := decodeBody[branchesView](t, rec)
	if len(got.Branches) != 3 || !got.HasMultipleBranches || got.Selected != nil {
		t.Errorf("branches = %+v", got)
	}

	for _, tc := range []struct {
		identity *account.Identity
		want     int
	}{{nil, http.StatusUnauthorized}, {&trainerID, http.StatusForbidden}} {
		rec = httptest.NewRecorder()
		handleAPIBranches(rec, authRequest("GET", "/api/branches", "", tc.identity, dev))
		if rec.Code != tc.want {
			t.Errorf("status = %d, want %d", rec.Code, tc.want)
		}
	}
}

func TestHandleAPISelectBranch(t *testing.T) {
	newTestStores(t)
	dev := newDevice(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantID     string
	}{
		{"select", `{"branchId":"br-cuba"}`, http.StatusOK, "br-cuba"},
		{"unknown keeps selection", `{"branchId":"br-mars"}`, http.StatusNotFound, "br-cuba"},
		{"clear", `{"branchId":""}`, http.StatusOK, ""},
		{"bad json", `{"branch":1}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleAPISelectBranch(rec, authRequest("POST", "/api/branches/select", tt.body, &adminID, dev))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			gotID := ""
			if sel := dev.Branch.State().Selected; sel != nil {
				gotID = sel.ID
			}
			if gotID != tt.wantID {
				t.Errorf("selected = %q, want %q", gotID, tt.wantID)
			}
		})
	}
}

// --- Tests: shop ---

func TestHandleAPIProducts(t *testing.T) {
	newTestStores(t)
	rec := httptest.NewRecorder()
	handleAPIProducts(rec, authRequest("GET", "/api/products?category=apparel", "", nil, nil))
	got := decodeBody[productsView](t, rec)
	if len(got.Products) != 2 {
		t.Errorf("apparel products = %d, want 2", len(got.Products))
	}
}

func TestHandleAPICart(t *testing.T) {
	newTestStores(t)
	dev := newDevice(t)

	steps := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCount  int
	}{
		{"add", "POST", "/api/cart", `{"productId":"prd-whey","quantity":2}`, http.StatusOK, 2},
		{"add default quantity", "POST", "/api/cart", `{"productId":"prd-tee"}`, http.StatusOK, 3},
		{"sold out", "POST", "/api/cart", `{"productId":"prd-hoodie","quantity":1}`, http.StatusConflict, 3},
		{"unknown product", "POST", "/api/cart", `{"productId":"prd-none","quantity":1}`, http.StatusNotFound, 3},
		{"negative quantity", "POST", "/api/cart", `{"productId":"prd-tee","quantity":-1}`, http.StatusBadRequest, 3},
		{"set quantity", "PATCH", "/api/cart", `{"productId":"prd-whey","quantity":5}`, http.StatusOK, 6},
		{"set above stock", "PATCH", "/api/cart", `{"productId":"prd-whey","quantity":500}`, http.StatusConflict, 6},
		{"remove line", "DELETE", "/api/cart?productId=prd-tee", "", http.StatusOK, 5},
		{"view", "GET", "/api/cart", "", http.StatusOK, 5},
		{"clear", "DELETE", "/api/cart", "", http.StatusOK, 0},
	}
	for _, st := range steps {
		rec := httptest.NewRecorder()
		handleAPICart(rec, authRequest(st.method, st.target, st.body, &memberID, dev))
		if rec.Code != st.wantStatus {
			t.Fatalf("%s: status = %d, want %d (body %s)", st.name, rec.Code, st.wantStatus, rec.Body.String())
		}
		if got := dev.Cart.State().Count(); got != st.wantCount {
			t.Errorf("%s: count = %d, want %d", st.name, got, st.wantCount)
		}
	}

	rec := httptest.NewRecorder()
	handleAPICart(rec, authRequest("GET", "/api/cart", "", nil, dev))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rec.Code)
	}
}

func TestCartView_Total(t *testing.T) {
	newTestStores(t)
	dev := newDevice(t)
	rec := httptest.NewRecorder()
	handleAPICart(rec, authRequest("POST", "/api/cart", `{"productId":"prd-whey","quantity":2}`, &memberID, dev))
	got := decodeBody[cartView](t, rec)
	if got.TotalCents != 2*5990 || got.TotalDisplay != "$119.80" {
		t.Errorf("total = %d %q", got.TotalCents, got.TotalDisplay)
	}
}

// --- Tests: admin ---

func TestHandleAPIAdminAccounts_Pagination(t *testing.T) {
	newTestStores(t)
	for i := 0; i < 12; i++ {
		seedAccount(t, account.Identity{
			ID: fmt.Sprintf("m-%02d", i), Name: "Member", Email: fmt.Sprintf("m%02d@gymhub.test", i), Role: account.RoleMember,
		}, "")
	}
	seedAccount(t, trainerID, "")

	tests := []struct {
		name      string
		target    string
		role      account.Role
		wantCount int
		wantPages int
		wantNext  bool
	}{
		{"first page", "/api/admin/members?per_page=10", account.RoleMember, 10, 2, true},
		{"second page", "/api/admin/members?per_page=10&page=2", account.RoleMember, 2, 2, false},
		{"page past end clamps", "/api/admin/members?per_page=10&page=9", account.RoleMember, 2, 2, false},
		{"trainers", "/api/admin/trainers", account.RoleTrainer, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleAPIAdminAccounts(tt.role)(rec, authRequest("GET", tt.target, "", &adminID, nil))
			got := decodeBody[accountsView](t, rec)
			if len(got.Accounts) != tt.wantCount || got.TotalPages != tt.wantPages || got.HasNext != tt.wantNext {
				t.Errorf("got %d accounts, %d pages, next=%v", len(got.Accounts), got.TotalPages, got.HasNext)
			}
		})
	}

	rec := httptest.NewRecorder()
	handleAPIAdminAccounts(account.RoleMember)(rec, authRequest("GET", "/api/admin/members", "", &memberID, nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("member status = %d, want 403", rec.Code)
	}
}

func TestHandleAdminAccount_Detail(t *testing.T) {
	newTestStores(t)
	seedAccount(t, memberID, "")
	seedAccount(t, trainerID, "")
	dev := newDevice(t)
	if _, err := loadBranches(authRequest("GET", "/admin", "", &adminID, dev)); err != nil {
		t.Fatal(err)
	}
	dev.Branch.SelectByID(context.Background(), "br-ponsonby")

	h := handleAdminAccount(access.RouteAdminMembers, account.RoleMember)
	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/admin/members/" + memberID.ID, http.StatusOK},
		{"/admin/members/" + trainerID.ID, http.StatusNotFound},
		{"/admin/members/nobody", http.StatusNotFound},
		{"/admin/members", http.StatusOK},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h(rec, authRequest("GET", tt.target, "", &adminID, dev))
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.target, rec.Code, tt.wantStatus)
		}
	}
}

func TestHandleAPIAdminPerf(t *testing.T) {
	newTestStores(t)
	perfCollector.Record(perf.Entry{Kind: perf.KindRedirect, Path: "anonymous -> /signin", Timestamp: time.Now()})

	rec := httptest.NewRecorder()
	handleAPIAdminPerf(rec, authRequest("GET", "/api/admin/perf?minutes=5", "", &adminID, nil))
	got := decodeBody[perf.Snapshot](t, rec)
	if len(got.Redirects) != 1 || got.Redirects[0].Path != "anonymous -> /signin" {
		t.Errorf("redirects = %+v", got.Redirects)
	}

	rec = httptest.NewRecorder()
	handleAPIAdminPerf(rec, authRequest("GET", "/api/admin/perf?minutes=9223372036854775807", "", &adminID, nil))
	got = decodeBody[perf.Snapshot](t, rec)
	if len(got.Redirects) != 1 {
		t.Errorf("huge window redirects = %+v, want the recent entry", got.Redirects)
	}
}

// --- Tests: rendering ---

func TestRender_BranchesHTML(t *testing.T) {
	newTestStores(t)
	req := authRequest("GET", "/admin/branches", "", &adminID, newDevice(t))
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handleView(access.RouteAdminBranches, "branches.html", loadBranchesView)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Ponsonby", "<strong>24/7</strong>", "<em>strength</em>", "Switch branch"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestRender_EveryPageParses(t *testing.T) {
	newTestStores(t)
	for name := range pages {
		req := authRequest("GET", "/", "", &adminID, newDevice(t))
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		var data any
		switch name {
		case "signin.html":
			data = signInForm{}
		case "signup.html":
			data = signUpForm{Fields: map[string]string{"Email": "email"}}
		case "shop.html":
			data = productsView{}
		case "cart.html":
			data = newCartView(newDevice(t).Cart.State())
		case "accounts.html":
			data = accountsView{}
		case "account.html":
			data = memberID
		case "branches.html", "branch_select.html":
			data = branchesView{}
		}
		render(rec, req, http.StatusOK, access.RouteHome, name, data, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d: %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleHome_UnknownPath(t *testing.T) {
	newTestStores(t)
	rec := httptest.NewRecorder()
	handleHome(rec, authRequest("GET", "/no-such-page", "", nil, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":              "/fallback",
		"/admin":        "/admin",
		"//evil.com":    "/fallback",
		"/\\evil.com":   "/fallback",
		"https://x.com": "/fallback",
	}
	for in, want := range tests {
		if got := safeNext(in, "/fallback"); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
