package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"gymhub/internal/domain/account"
	"gymhub/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// DefaultSessionTTL is how long a session lives after sign-in.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore is the in-memory registry of signed-in browsers, keyed by token.
// Sessions are not persisted; a restart signs everyone out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store.
// A non-positive ttl uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]session.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the session lifetime.
func (ss *SessionStore) TTL() time.Duration {
	return ss.ttl
}

// Create signs identity in under a fresh token.
// PRE: identity has an ID and a valid role
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(identity account.Identity) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	var s session.Session
	s.Login(identity, token)
	s.CreatedAt = ss.now()

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = s
	return token, nil
}

// Get retrieves a session by token.
// POST: Returns the session if present and not expired; expired sessions are evicted
func (ss *SessionStore) Get(token string) (session.Session, bool) {
	ss.mu.RLock()
	s, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return session.Session{}, false
	}
	if ss.now().Sub(s.CreatedAt) > ss.ttl {
		ss.Delete(token)
		return session.Session{}, false
	}
	return s, true
}

// Delete removes a session by token. Deleting an unknown token is a no-op.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// UpdateIdentity merges patch into the identity of the session under token.
// POST: Returns false and changes nothing if no such session exists
func (ss *SessionStore) UpdateIdentity(token string, patch account.IdentityPatch) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	s, ok := ss.sessions[token]
	if !ok {
		return false
	}
	if !s.UpdateIdentity(patch) {
		return false
	}
	ss.sessions[token] = s
	return true
}

// Len returns the number of live and not yet evicted sessions.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// SessionCookieName names the cookie carrying the session token.
const SessionCookieName = "gymhub_session"

// Auth returns middleware that resolves the session cookie and puts the
// session in context. Requests without a valid cookie carry the anonymous
// session. It never blocks; the gate decides what anonymous users may see.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s session.Session
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if found, ok := sessions.Get(cookie.Value); ok {
					s = found
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), s)))
		})
	}
}

// SessionFromContext returns the request's session, anonymous if none was set.
func SessionFromContext(ctx context.Context) session.Session {
	s, _ := ctx.Value(sessionContextKey).(session.Session)
	return s
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// IsRole checks if the current session has one of the given roles.
func IsRole(ctx context.Context, roles ...account.Role) bool {
	s := SessionFromContext(ctx)
	if !s.IsAuthenticated() {
		return false
	}
	for _, r := range roles {
		if s.Role() == r {
			return true
		}
	}
	return false
}

// IsAdmin checks if the current session is an admin.
func IsAdmin(ctx context.Context) bool {
	return IsRole(ctx, account.RoleAdmin)
}

// CookieOptions controls attributes shared by the portal's cookies.
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
