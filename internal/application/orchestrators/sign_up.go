package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"gymhub/internal/adapters/email"
	"gymhub/internal/domain/account"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AccountStoreForSignUp defines the store interface needed by SignUp.
type AccountStoreForSignUp interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Count(ctx context.Context) (int, error)
}

// SignUpInput carries the public registration form.
// Only member accounts can be self-registered.
type SignUpInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Phone    string `validate:"omitempty,max=30"`
	Password string `validate:"required,min=12"`
	Role     string `validate:"omitempty,oneof=member"`
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	AccountStore AccountStoreForSignUp
	EmailSender  email.Sender // optional
	SignInURL    string
	Now          func() time.Time
}

var ErrEmailAlreadyExists = errors.New("an account with this email already exists")

// ValidationError lists the rejected fields of a form, keyed by field name,
// with the failed rule as the value.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, f := range names {
		parts[i] = f + ": " + e.Fields[f]
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}

// ExecuteSignUp registers a new account and returns its identity.
// PRE: input passes the struct validation rules
// POST: Account persisted with a bcrypt hash; a welcome email is attempted
// INVARIANT: Email must be unique (case-insensitive)
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (account.Identity, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validate.Struct(input); err != nil {
		return account.Identity{}, validationError(err)
	}

	acct, err := createAccount(ctx, deps.AccountStore, newAccountFields{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		Role:     account.RoleMember,
	}, deps.Now)
	if err != nil {
		return account.Identity{}, err
	}

	if deps.EmailSender != nil {
		sendWelcome(ctx, deps.EmailSender, acct, deps.SignInURL)
	}
	return acct.Identity(), nil
}

type newAccountFields struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     account.Role
}

func createAccount(ctx context.Context, store AccountStoreForSignUp, f newAccountFields, now func() time.Time) (account.Account, error) {
	if _, err := store.GetByEmail(ctx, f.Email); err == nil {
		return account.Account{}, ErrEmailAlreadyExists
	}
	if now == nil {
		now = time.Now
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Name:      f.Name,
		Email:     f.Email,
		Phone:     f.Phone,
		Role:      f.Role,
		CreatedAt: now(),
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(f.Password); err != nil {
		return account.Account{}, err
	}
	if err := store.Save(ctx, acct); err != nil {
		return account.Account{}, fmt.Errorf("save account: %w", err)
	}

	slog.Info("auth_event", "event", "account_created", "email", acct.Email, "role", acct.Role)
	return acct, nil
}

// sendWelcome is best effort: failures are logged and sign-up still succeeds.
func sendWelcome(ctx context.Context, sender email.Sender, acct account.Account, signInURL string) {
	body, err := email.RenderWelcome(email.WelcomeData{Name: acct.Name, Role: string(acct.Role), SignInURL: signInURL})
	if err != nil {
		slog.Error("welcome_email_failed", "email", acct.Email, "error", err)
		return
	}
	if _, err := sender.Send(ctx, email.SendRequest{
		To:      []string{acct.Email},
		Subject: email.WelcomeSubject,
		HTML:    body,
	}); err != nil {
		slog.Warn("welcome_email_failed", "email", acct.Email, "error", err)
	}
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, store AccountStoreForSignUp, adminEmail, password string) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := createAccount(ctx, store, newAccountFields{
		Name:     "Administrator",
		Email:    strings.ToLower(strings.TrimSpace(adminEmail)),
		Password: password,
		Role:     account.RoleAdmin,
	}, nil); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", adminEmail)
	return nil
}
