package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
)

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// Role is the portal role an identity signs in with.
type Role string

// Role constants
const (
	RoleMember  Role = "member"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleMember, RoleTrainer, RoleAdmin}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: member, trainer, admin")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNameTooLong      = errors.New("name cannot exceed 100 characters")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
)

// IsValidationError reports whether err is one of the field errors returned
// by Validate or SetPassword.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidEmail, ErrEmptyEmail, ErrEmptyName, ErrInvalidRole,
		ErrEmptyPassword, ErrPasswordTooShort, ErrNameTooLong, ErrEmailTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ParseRole converts a stored or submitted role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, v := range ValidRoles {
		if v == r {
			return true
		}
	}
	return false
}

// Identity is who a session belongs to. It is the subset of Account that
// the portal exposes to views.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`
}

// IdentityPatch carries the profile fields that may be merged into an
// Identity. Nil fields are left untouched.
type IdentityPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p IdentityPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}

// Apply returns id with the non-nil patch fields merged in.
// INVARIANT: ID and Role are never changed by a patch
func (p IdentityPatch) Apply(id Identity) Identity {
	if p.Name != nil {
		id.Name = *p.Name
	}
	if p.Email != nil {
		id.Email = *p.Email
	}
	if p.Phone != nil {
		id.Phone = *p.Phone
	}
	return id
}

// Account holds state for the Account concept.
type Account struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if !a.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Identity returns the view-facing identity of the account.
// INVARIANT: Account fields are not mutated
func (a *Account) Identity() Identity {
	return Identity{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Phone: a.Phone,
		Role:  a.Role,
	}
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
func (a *Account) IsLocked() bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after MaxFailedLogins failures.
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = time.Now().Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}
