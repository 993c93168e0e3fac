package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymhub/internal/domain/branch"
)

// BranchStoreForSeed defines the store interface needed by SeedBranches.
type BranchStoreForSeed interface {
	Save(ctx context.Context, b branch.Branch) error
	Count(ctx context.Context) (int, error)
}

// seedBranches is the fixture catalog used in development and on first boot.
func seedBranches() []branch.Branch {
	return []branch.Branch{
		{
			ID:   "br-ponsonby",
			Name: "Ponsonby",
			Address: branch.Address{
				Street: "200 Ponsonby Road", City: "Auckland", Region: "Auckland", PostalCode: "1011", Country: "NZ",
			},
			Phone:       "09 555 0100",
			Description: "Flagship club. Open **24/7** with a full free-weights floor and two studios.",
			Status:      branch.StatusActive,
			Stats:       branch.Stats{TotalMembers: 412, ActiveMembers: 356, TotalTrainers: 9},
			Rating:      branch.Rating{Average: 4.7, Count: 128},
		},
		{
			ID:   "br-cuba",
			Name: "Cuba Street",
			Address: branch.Address{
				Street: "88 Cuba Street", City: "Wellington", Region: "Wellington", PostalCode: "6011", Country: "NZ",
			},
			Phone:       "04 555 0144",
			Description: "Boutique studio focused on *strength* and *conditioning* classes.",
			Status:      branch.StatusActive,
			Stats:       branch.Stats{TotalMembers: 198, ActiveMembers: 170, TotalTrainers: 5},
			Rating:      branch.Rating{Average: 4.5, Count: 61},
		},
		{
			ID:   "br-riccarton",
			Name: "Riccarton",
			Address: branch.Address{
				Street: "12 Riccarton Road", City: "Christchurch", Region: "Canterbury", PostalCode: "8011", Country: "NZ",
			},
			Phone:       "03 555 0190",
			Description: "Pool and spa closed for refurbishment until further notice.",
			Status:      branch.StatusMaintenance,
			Stats:       branch.Stats{TotalMembers: 240, ActiveMembers: 120, TotalTrainers: 4},
			Rating:      branch.Rating{Average: 4.1, Count: 37},
		},
	}
}

// ExecuteSeedBranches creates the fixture catalog when no branches exist.
// PRE: Database is initialized
// POST: Fixture branches saved if count == 0; calling again is a no-op
func ExecuteSeedBranches(ctx context.Context, store BranchStoreForSeed) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	fixtures := seedBranches()
	for _, b := range fixtures {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("seed branch %s: %w", b.ID, err)
		}
		if err := store.Save(ctx, b); err != nil {
			return fmt.Errorf("seed branch %s: %w", b.ID, err)
		}
	}
	slog.Info("seed_event", "event", "branches_seeded", "count", len(fixtures))
	return nil
}
