package orchestrators

import (
	"context"
	"errors"

	"gymhub/internal/domain/cart"
	"gymhub/internal/domain/product"
)

// ProductLookup defines the store interface needed by AddToCart.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
}

// CartForAdd is the per-device cart an add writes into.
type CartForAdd interface {
	Add(ctx context.Context, p product.Product, qty int)
	Quantity(productID string) int
	State() cart.Cart
}

// AddToCartInput carries input for AddToCart.
type AddToCartInput struct {
	ProductID string
	Quantity  int
}

// AddToCartDeps holds dependencies for AddToCart.
type AddToCartDeps struct {
	Products ProductLookup
	Cart     CartForAdd
}

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrOutOfStock      = errors.New("not enough stock")
)

// ExecuteAddToCart adds a catalog product to the device's cart.
// PRE: Quantity >= 1
// POST: The cart line never exceeds the product's stock
func ExecuteAddToCart(ctx context.Context, input AddToCartInput, deps AddToCartDeps) (cart.Cart, error) {
	if input.Quantity < 1 {
		return deps.Cart.State(), ErrInvalidQuantity
	}
	p, err := deps.Products.GetByID(ctx, input.ProductID)
	if err != nil {
		return deps.Cart.State(), err
	}
	if input.Quantity > p.Stock-deps.Cart.Quantity(p.ID) {
		return deps.Cart.State(), ErrOutOfStock
	}
	deps.Cart.Add(ctx, p, input.Quantity)
	return deps.Cart.State(), nil
}
