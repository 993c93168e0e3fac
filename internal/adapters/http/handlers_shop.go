package web

import (
	"errors"
	"net/http"

	"gymhub/internal/adapters/http/middleware"
	productStore "gymhub/internal/adapters/storage/product"
	"gymhub/internal/application/orchestrators"
	"gymhub/internal/domain/cart"
	"gymhub/internal/domain/product"
)

type productsView struct {
	Category string            `json:"category,omitempty"`
	Products []product.Product `json:"products"`
}

func listProducts(r *http.Request) (productsView, error) {
	category := r.URL.Query().Get("category")
	list, err := stores.ProductStore.List(r.Context(), category)
	if err != nil {
		return productsView{}, err
	}
	return productsView{Category: category, Products: list}, nil
}

// loadShopView feeds the shop and admin product views.
func loadShopView(r *http.Request) (any, error) {
	return listProducts(r)
}

// handleAPIProducts handles GET /api/products?category=
func handleAPIProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, err := listProducts(r)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type cartView struct {
	Items        []cart.Item `json:"items"`
	Count        int         `json:"count"`
	TotalCents   int64       `json:"totalCents"`
	TotalDisplay string      `json:"total"`
}

func newCartView(c cart.Cart) cartView {
	total := c.Total()
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{
		Items:        items,
		Count:        c.Count(),
		TotalCents:   total.Amount(),
		TotalDisplay: total.Display(),
	}
}

// loadCartView feeds the cart view.
func loadCartView(r *http.Request) (any, error) {
	dev, ok := middleware.DeviceFromContext(r.Context())
	if !ok {
		return nil, errNoDevice
	}
	return newCartView(dev.Cart.State()), nil
}

type cartLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// handleAPICart handles GET (view), POST (add), PATCH (set quantity) and
// DELETE (remove line with ?productId=, or clear) for /api/cart
func handleAPICart(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireSession(w, r); !ok {
		return
	}
	dev, ok := requireDevice(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, newCartView(dev.Cart.State()))

	case http.MethodPost:
		var req cartLineRequest
		if err := strictDecode(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		c, err := orchestrators.ExecuteAddToCart(ctx, orchestrators.AddToCartInput{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}, orchestrators.AddToCartDeps{Products: stores.ProductStore, Cart: dev.Cart})
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, newCartView(c))
		case errors.Is(err, orchestrators.ErrInvalidQuantity):
			jsonError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, orchestrators.ErrOutOfStock):
			jsonError(w, http.StatusConflict, err.Error())
		case errors.Is(err, productStore.ErrNotFound):
			jsonError(w, http.StatusNotFound, "product not found")
		default:
			internalError(w, err)
		}

	case http.MethodPatch:
		var req cartLineRequest
		if err := strictDecode(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.Quantity > 0 {
			p, err := stores.ProductStore.GetByID(ctx, req.ProductID)
			if err != nil && !errors.Is(err, productStore.ErrNotFound) {
				internalError(w, err)
				return
			}
			if err == nil && req.Quantity > p.Stock {
				jsonError(w, http.StatusConflict, orchestrators.ErrOutOfStock.Error())
				return
			}
		}
		if !dev.Cart.SetQuantity(ctx, req.ProductID, req.Quantity) {
			jsonError(w, http.StatusNotFound, "product not in cart")
			return
		}
		writeJSON(w, http.StatusOK, newCartView(dev.Cart.State()))

	case http.MethodDelete:
		if id := r.URL.Query().Get("productId"); id != "" {
			dev.Cart.Remove(ctx, id)
		} else {
			dev.Cart.Clear(ctx)
		}
		writeJSON(w, http.StatusOK, newCartView(dev.Cart.State()))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
