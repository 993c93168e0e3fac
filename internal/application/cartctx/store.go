// Package cartctx holds the per-browser shopping cart.
package cartctx

import (
	"context"
	"sync"

	"gymhub/internal/adapters/storage/clientstate"
	"gymhub/internal/application/persist"
	"gymhub/internal/domain/cart"
	"gymhub/internal/domain/product"
)

// Namespace is the fixed record namespace of the cart.
const Namespace = "gym-cart-storage"

// NewSlot creates the persistence slot for carts.
func NewSlot(store clientstate.Store) *persist.Slot[cart.Cart] {
	return persist.NewSlot[cart.Cart](store, Namespace)
}

// Store is the cart of one device. Mutations are written through before returning.
type Store struct {
	mu       sync.Mutex
	slot     *persist.Slot[cart.Cart]
	deviceID string
	state    cart.Cart
}

// Open rehydrates the device's cart. Lines with a non-positive quantity are dropped.
func Open(ctx context.Context, slot *persist.Slot[cart.Cart], deviceID string) *Store {
	c := slot.Load(ctx, deviceID)
	var clean cart.Cart
	for _, it := range c.Items {
		if it.Quantity > 0 && it.ProductID != "" {
			clean.Items = append(clean.Items, it)
		}
	}
	return &Store{slot: slot, deviceID: deviceID, state: clean}
}

// State returns a snapshot of the cart.
func (s *Store) State() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.Cart{Items: append([]cart.Item(nil), s.state.Items...)}
}

func (s *Store) mutate(ctx context.Context, fn func(c *cart.Cart) bool) bool {
	s.mu.Lock()
	changed := fn(&s.state)
	snapshot := cart.Cart{Items: append([]cart.Item(nil), s.state.Items...)}
	s.mu.Unlock()
	if changed {
		s.slot.Save(ctx, s.deviceID, snapshot)
	}
	return changed
}

// Add puts qty units of p in the cart.
func (s *Store) Add(ctx context.Context, p product.Product, qty int) {
	s.mutate(ctx, func(c *cart.Cart) bool {
		if qty <= 0 {
			return false
		}
		c.Add(p, qty)
		return true
	})
}

// SetQuantity changes a line's quantity; qty <= 0 removes it.
// POST: Returns false if the product is not in the cart
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) bool {
	return s.mutate(ctx, func(c *cart.Cart) bool {
		return c.SetQuantity(productID, qty)
	})
}

// Remove drops a line.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.SetQuantity(ctx, productID, 0)
}

// Quantity returns the units of productID already in the cart.
func (s *Store) Quantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.state.Items {
		if it.ProductID == productID {
			return it.Quantity
		}
	}
	return 0
}

// Clear empties the cart and removes the persisted record.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state.Clear()
	s.mu.Unlock()
	s.slot.Delete(ctx, s.deviceID)
}
