package web

import (
	"embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"gymhub/internal/adapters/email"
	"gymhub/internal/adapters/http/middleware"
	"gymhub/internal/adapters/http/perf"
	accountStore "gymhub/internal/adapters/storage/account"
	branchStore "gymhub/internal/adapters/storage/branch"
	"gymhub/internal/adapters/storage/clientstate"
	productStore "gymhub/internal/adapters/storage/product"
	"gymhub/internal/application/branchctx"
	"gymhub/internal/application/cartctx"
)

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore accountStore.Store
	BranchStore  branchStore.Store
	ProductStore productStore.Store
}

// Options configures the HTTP surface.
type Options struct {
	// Secure marks cookies Secure and enforces HTTPS origin checks for CSRF.
	Secure bool
	// CSRFKey is the 32 byte gorilla/csrf key. Nil uses a random key.
	CSRFKey []byte
	// CookieKey signs the device cookie. Nil uses a random key.
	CookieKey []byte
	// TrustedOrigins are extra origins allowed to post forms.
	TrustedOrigins []string

	RateLimitPerSecond int
	SessionTTL         time.Duration
	SlowRequestMs      int

	// ClientState persists per-device branch contexts and carts.
	ClientState clientstate.Store
	// EmailSender delivers welcome emails. Nil disables them.
	EmailSender email.Sender
	// BaseURL is the public root used in links sent by email.
	BaseURL string
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by NewMux)
var emailSender email.Sender

// signInURL is linked from welcome emails.
var signInURL = "/signin"

// sessionCookie carries the cookie attributes for the session token.
var sessionCookie middleware.CookieOptions

// DefaultRateLimitPerSecond is used when Options leaves the limit unset.
const DefaultRateLimitPerSecond = 20

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	emailSender = opts.EmailSender
	sessions = middleware.NewSessionStore(opts.SessionTTL)
	sessionCookie = middleware.CookieOptions{Secure: opts.Secure, MaxAge: sessions.TTL()}
	if opts.BaseURL != "" {
		signInURL = opts.BaseURL + "/signin"
	}

	state := opts.ClientState
	if state == nil {
		slog.Warn("client_state_ephemeral", "reason", "no client state store configured")
		state = clientstate.NewMemoryStore()
	}
	slots := middleware.DeviceSlots{
		Branch: branchctx.NewSlot(state),
		Cart:   cartctx.NewSlot(state),
	}

	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		slog.Warn("csrf_key_ephemeral", "reason", "forms will not survive a restart")
		csrfKey = securecookie.GenerateRandomKey(32)
	}
	rps := opts.RateLimitPerSecond
	if rps <= 0 {
		rps = DefaultRateLimitPerSecond
	}

	mux := http.NewServeMux()
	mux.Handle("/static/", http.FileServer(http.FS(staticFS)))
	registerRoutes(mux)

	// Timing -> RateLimit -> SecurityHeaders -> CSRF -> Auth -> Devices -> Gate -> Mux
	return middleware.Chain(mux,
		middleware.Gate(collector),
		middleware.Devices(middleware.NewDeviceCookies(opts.CookieKey, opts.Secure), slots),
		middleware.Auth(sessions),
		middleware.CSRF(csrfKey, opts.Secure, opts.TrustedOrigins),
		middleware.SecurityHeaders,
		middleware.RateLimit(middleware.NewRateLimiter(rps)),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}
