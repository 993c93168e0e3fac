package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "gymhub/internal/adapters/http"
	"gymhub/internal/adapters/http/perf"
	"gymhub/internal/adapters/storage"
	accountStore "gymhub/internal/adapters/storage/account"
	branchStore "gymhub/internal/adapters/storage/branch"
	"gymhub/internal/adapters/storage/clientstate"
	productStore "gymhub/internal/adapters/storage/product"
	"gymhub/internal/application/orchestrators"
)

// Test account credentials created by ExecuteSeedTestAccounts.
var credentials = map[string][2]string{
	"admin":   {"admin@gymhub.test", "Umami+admin!"},
	"trainer": {"trainer@gymhub.test", "Umami+trainer!"},
	"member":  {"member@gymhub.test", "Umami+member!"},
}

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL   string
	DB        *sql.DB
	Server    *http.Server
	PW        *playwright.Playwright
	Browser   playwright.Browser
	Stores    *web.Stores
	Collector *perf.Collector
}

// newTestApp creates a fully wired app with a temp SQLite DB, the fixture
// branches and products, one account per role, and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	collector := perf.NewCollector(1000)
	timed := storage.NewTimedDB(db, collector, 0)
	stores := &web.Stores{
		AccountStore: accountStore.NewSQLiteStore(timed),
		BranchStore:  branchStore.NewSQLiteStore(timed),
		ProductStore: productStore.NewSQLiteStore(timed),
	}

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedTestAccounts(ctx, stores.AccountStore); err != nil {
		t.Fatalf("failed to seed test accounts: %v", err)
	}
	if err := orchestrators.ExecuteSeedBranches(ctx, stores.BranchStore); err != nil {
		t.Fatalf("failed to seed branches: %v", err)
	}
	if err := orchestrators.ExecuteSeedProducts(ctx, stores.ProductStore); err != nil {
		t.Fatalf("failed to seed products: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	mux := web.NewMux(stores, collector, web.Options{
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
		RateLimitPerSecond: 1000,
		ClientState:        clientstate.NewSQLiteStore(timed),
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:   baseURL,
		DB:        db,
		Server:    srv,
		PW:        pw,
		Browser:   browser,
		Stores:    stores,
		Collector: collector,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage opens a tab in a fresh browser context, so each page has its own
// cookies and therefore its own device.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// signIn submits the sign-in form as role and waits for landing.
func (a *testApp) signIn(t *testing.T, page playwright.Page, role, landing string) {
	t.Helper()
	creds, ok := credentials[role]
	if !ok {
		t.Fatalf("no test account for role %q", role)
	}
	if _, err := page.Goto(a.BaseURL + "/signin"); err != nil {
		t.Fatalf("failed to navigate to sign in: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(creds[0]); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(creds[1]); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("main button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click sign in: %v", err)
	}
	a.waitFor(t, page, landing)
}

func (a *testApp) waitFor(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if err := page.WaitForURL(a.BaseURL+path, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("did not reach %s (at %s): %v", path, page.URL(), err)
	}
}

func heading(t *testing.T, page playwright.Page) string {
	t.Helper()
	text, err := page.Locator("main h1").TextContent()
	if err != nil {
		t.Fatalf("failed to read heading: %v", err)
	}
	return text
}
