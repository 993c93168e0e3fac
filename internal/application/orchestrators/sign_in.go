package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gymhub/internal/domain/account"
)

// AccountStoreForSignIn defines the store interface needed by SignIn.
type AccountStoreForSignIn interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// SignInInput carries input for the sign-in orchestrator.
type SignInInput struct {
	Email    string
	Password string
}

// SignInDeps holds dependencies for SignIn.
type SignInDeps struct {
	AccountStore AccountStoreForSignIn
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteSignIn validates credentials and returns the identity to log in.
// PRE: Valid email and password provided
// POST: Returns the identity on success, records the failed attempt otherwise
// INVARIANT: A locked account never signs in, even with the right password
func ExecuteSignIn(ctx context.Context, input SignInInput, deps SignInDeps) (account.Identity, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return account.Identity{}, ErrInvalidCredentials
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return account.Identity{}, ErrInvalidCredentials
	}

	if acct.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return account.Identity{}, ErrAccountLocked
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "lockout_save_failed", "email", email, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return account.Identity{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "lockout_reset_failed", "email", email, "error", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "email", email, "role", acct.Role)
	return acct.Identity(), nil
}
