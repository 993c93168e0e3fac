package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"gymhub/internal/domain/product"
)

// ProductStoreForSeed defines the store interface needed by SeedProducts.
type ProductStoreForSeed interface {
	Save(ctx context.Context, p product.Product) error
	Count(ctx context.Context) (int, error)
}

func seedProducts() []product.Product {
	return []product.Product{
		{ID: "prd-whey", Name: "Whey Protein 1kg", Category: product.CategorySupplements, PriceCents: 5990, Stock: 24},
		{ID: "prd-creatine", Name: "Creatine Monohydrate 300g", Category: product.CategorySupplements, PriceCents: 3990, Stock: 15},
		{ID: "prd-tee", Name: "GymHub Training Tee", Category: product.CategoryApparel, PriceCents: 3500, Stock: 40},
		{ID: "prd-hoodie", Name: "GymHub Hoodie", Category: product.CategoryApparel, PriceCents: 7900, Stock: 0},
		{ID: "prd-bands", Name: "Resistance Band Set", Category: product.CategoryEquipment, PriceCents: 2950, Stock: 18},
	}
}

// ExecuteSeedProducts creates the fixture storefront when no products exist.
// POST: Fixture products saved if count == 0
func ExecuteSeedProducts(ctx context.Context, store ProductStoreForSeed) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	fixtures := seedProducts()
	for _, p := range fixtures {
		if err := store.Save(ctx, p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.ID, err)
		}
	}
	slog.Info("seed_event", "event", "products_seeded", "count", len(fixtures))
	return nil
}
