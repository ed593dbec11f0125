package cart

import (
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
	"github.com/sadsod/storefront/internal/domain/cart"
)

// AddToCartRequest adds units of a product to the session cart.
// A missing quantity adds one unit.
type AddToCartRequest struct {
	ProductID string `json:"product_id" form:"product_id" binding:"required"`
	Quantity  *int64 `json:"quantity" form:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateCartRequest replaces the whole cart. Keys are product ids and values
// are quantities as submitted; entries at zero or below are removed.
type UpdateCartRequest struct {
	Items map[string]string `json:"items" binding:"required"`
}

// CartLineResponse is a cart line priced against the current catalog
type CartLineResponse struct {
	Product   catalogapp.ProductResponse `json:"product"`
	Quantity  int64                      `json:"quantity"`
	LineTotal int64                      `json:"line_total"`
}

// CartResponse is the resolved session cart
type CartResponse struct {
	Lines    []CartLineResponse `json:"lines"`
	Subtotal int64              `json:"subtotal"`
	Count    int64              `json:"count"`
}

// ToCartResponse converts a resolved cart. imageURL may be nil.
func ToCartResponse(r cart.Resolved, imageURL func(string) string) CartResponse {
	lines := make([]CartLineResponse, len(r.Lines))
	for i := range r.Lines {
		lines[i] = CartLineResponse{
			Product:   catalogapp.ToProductResponse(&r.Lines[i].Product, imageURL),
			Quantity:  r.Lines[i].Quantity,
			LineTotal: r.Lines[i].LineTotal,
		}
	}
	return CartResponse{
		Lines:    lines,
		Subtotal: r.Subtotal,
		Count:    r.Count,
	}
}
