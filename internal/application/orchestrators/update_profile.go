package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gymhub/internal/domain/account"
)

// AccountStoreForProfile defines the store interface needed by UpdateProfile.
type AccountStoreForProfile interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// UpdateProfileInput carries a partial profile edit for the signed-in account.
type UpdateProfileInput struct {
	AccountID string
	Patch     account.IdentityPatch
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	AccountStore AccountStoreForProfile
}

var ErrEmptyPatch = errors.New("no profile fields to update")

// ExecuteUpdateProfile persists a profile patch and returns the updated identity.
// PRE: AccountID identifies the signed-in account
// POST: Non-nil fields of the patch are saved; the identity reflects them
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) (account.Identity, error) {
	if input.Patch.Empty() {
		return account.Identity{}, ErrEmptyPatch
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return account.Identity{}, err
	}

	if input.Patch.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*input.Patch.Email))
		input.Patch.Email = &normalized
		if normalized != acct.Email {
			if other, err := deps.AccountStore.GetByEmail(ctx, normalized); err == nil && other.ID != acct.ID {
				return account.Identity{}, ErrEmailAlreadyExists
			}
		}
	}

	next := input.Patch.Apply(acct.Identity())
	acct.Name = next.Name
	acct.Email = next.Email
	acct.Phone = next.Phone
	if err := acct.Validate(); err != nil {
		return account.Identity{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return account.Identity{}, err
	}

	slog.Info("auth_event", "event", "profile_updated", "account_id", acct.ID)
	return acct.Identity(), nil
}
