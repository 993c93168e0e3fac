package cart

import (
	"github.com/Rhymond/go-money"

	"gymhub/internal/domain/product"
)

// Currency is the storefront currency.
const Currency = money.NZD

// Item is one cart line.
type Item struct {
	ProductID  string `json:"productId"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

// Cart is the shopping cart of one browser. The zero value is empty.
// INVARIANT: every item has Quantity > 0 and ProductIDs are unique
type Cart struct {
	Items []Item `json:"items"`
}

func (c *Cart) index(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of p in the cart, merging with an existing line.
// Non-positive quantities are ignored.
func (c *Cart) Add(p product.Product, qty int) {
	if qty <= 0 {
		return
	}
	if i := c.index(p.ID); i >= 0 {
		c.Items[i].Quantity += qty
		return
	}
	c.Items = append(c.Items, Item{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Quantity:   qty,
	})
}

// SetQuantity sets a line's quantity; qty <= 0 removes the line.
// Returns false when the product is not in the cart.
func (c *Cart) SetQuantity(productID string, qty int) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = qty
	return true
}

// Remove drops a line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	c.SetQuantity(productID, 0)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Count returns the total number of units.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Total returns the cart value.
func (c Cart) Total() *money.Money {
	var cents int64
	for _, it := range c.Items {
		cents += it.PriceCents * int64(it.Quantity)
	}
	return money.New(cents, Currency)
}
