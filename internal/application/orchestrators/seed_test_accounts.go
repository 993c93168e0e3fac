package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymhub/internal/domain/account"
)

// testAccountDef defines a single development account to seed.
type testAccountDef struct {
	Name     string
	Email    string
	Password string
	Role     account.Role
}

// testAccounts returns one account per role, for local development and browser tests.
func testAccounts() []testAccountDef {
	return []testAccountDef{
		{Name: "Test Admin", Email: "admin@gymhub.test", Password: "Umami+admin!", Role: account.RoleAdmin},
		{Name: "Test Trainer", Email: "trainer@gymhub.test", Password: "Umami+trainer!", Role: account.RoleTrainer},
		{Name: "Test Member", Email: "member@gymhub.test", Password: "Umami+member!", Role: account.RoleMember},
	}
}

// ExecuteSeedTestAccounts creates the development accounts that do not exist yet.
// PRE: Database is initialized; only called outside production
// POST: Each test account exists exactly once
func ExecuteSeedTestAccounts(ctx context.Context, store AccountStoreForSignUp) error {
	created := 0
	for _, def := range testAccounts() {
		if _, err := store.GetByEmail(ctx, def.Email); err == nil {
			continue
		}
		if _, err := createAccount(ctx, store, newAccountFields{
			Name:     def.Name,
			Email:    def.Email,
			Password: def.Password,
			Role:     def.Role,
		}, nil); err != nil {
			return fmt.Errorf("seed test account %s: %w", def.Email, err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seed_event", "event", "test_accounts_seeded", "created", created)
	}
	return nil
}
