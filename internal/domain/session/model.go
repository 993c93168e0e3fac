package session

import (
	"time"

	"gymhub/internal/domain/account"
)

// Session is the record of who is signed in on one browser.
// The zero value is an anonymous session.
type Session struct {
	Identity  *account.Identity
	Token     string
	CreatedAt time.Time
}

// IsAuthenticated is derived from token presence.
// INVARIANT: Session fields are not mutated
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Role returns the identity's role, or "" when no identity is attached.
func (s Session) Role() account.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Login replaces the session with identity and token.
// PRE: identity and token were produced by the authentication collaborator
// POST: IsAuthenticated() is true and Identity is a copy of identity
func (s *Session) Login(identity account.Identity, token string) {
	id := identity
	*s = Session{
		Identity:  &id,
		Token:     token,
		CreatedAt: time.Now(),
	}
}

// Logout clears identity and token. Calling it on an anonymous session is a no-op.
// POST: IsAuthenticated() is false
func (s *Session) Logout() {
	*s = Session{}
}

// UpdateIdentity merges patch into the current identity.
// Returns false and changes nothing when no session is active.
func (s *Session) UpdateIdentity(patch account.IdentityPatch) bool {
	if !s.IsAuthenticated() || s.Identity == nil {
		return false
	}
	merged := patch.Apply(*s.Identity)
	s.Identity = &merged
	return true
}
