package cart_test

import (
	"testing"

	"gymhub/internal/domain/cart"
	"gymhub/internal/domain/product"
)

var (
	whey  = product.Product{ID: "p1", Name: "Whey 1kg", Category: product.CategorySupplements, PriceCents: 5999, Stock: 10}
	shirt = product.Product{ID: "p2", Name: "Club tee", Category: product.CategoryApparel, PriceCents: 3500, Stock: 3}
)

// TestCart_AddMergesLines verifies repeated adds accumulate on one line.
func TestCart_AddMergesLines(t *testing.T) {
	var c cart.Cart
	c.Add(whey, 1)
	c.Add(whey, 2)
	c.Add(shirt, 1)
	c.Add(shirt, 0)

	if len(c.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Errorf("whey quantity = %d, want 3", c.Items[0].Quantity)
	}
	if c.Count() != 4 {
		t.Errorf("Count() = %d, want 4", c.Count())
	}
}

// TestCart_SetQuantity verifies updates, removal at zero and unknown products.
func TestCart_SetQuantity(t *testing.T) {
	var c cart.Cart
	c.Add(whey, 1)
	c.Add(shirt, 1)

	if !c.SetQuantity("p2", 5) || c.Items[1].Quantity != 5 {
		t.Errorf("SetQuantity(p2, 5) not applied: %+v", c.Items)
	}
	if !c.SetQuantity("p1", 0) || len(c.Items) != 1 || c.Items[0].ProductID != "p2" {
		t.Errorf("SetQuantity(p1, 0) did not remove line: %+v", c.Items)
	}
	if c.SetQuantity("missing", 1) {
		t.Error("SetQuantity on unknown product returned true")
	}
	c.Remove("missing")
	if len(c.Items) != 1 {
		t.Errorf("Remove(missing) changed cart: %+v", c.Items)
	}
}

// TestCart_Total verifies the money total and formatting.
func TestCart_Total(t *testing.T) {
	var c cart.Cart
	if c.Total().Amount() != 0 {
		t.Errorf("empty cart total = %d, want 0", c.Total().Amount())
	}
	c.Add(whey, 2)
	c.Add(shirt, 1)

	total := c.Total()
	if total.Amount() != 2*5999+3500 {
		t.Errorf("Total().Amount() = %d, want %d", total.Amount(), 2*5999+3500)
	}
	if total.Currency().Code != cart.Currency {
		t.Errorf("currency = %s, want %s", total.Currency().Code, cart.Currency)
	}

	c.Clear()
	if c.Count() != 0 || c.Items != nil {
		t.Errorf("Clear() left items: %+v", c.Items)
	}
}
