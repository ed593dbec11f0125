package cart

import (
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/catalog"
)

// Line is a cart entry priced against the current catalog
type Line struct {
	Product   catalog.Product
	Quantity  int64
	LineTotal int64
}

// Resolved is a cart joined against catalog state
type Resolved struct {
	Lines    []Line
	Subtotal int64
	Count    int64
}

// IsEmpty reports whether no line survived resolution
func (r Resolved) IsEmpty() bool {
	return len(r.Lines) == 0
}

// Resolve prices the cart using the given products. Entries whose product
// is not among them are dropped without error. Lines follow the cart's
// stable product order.
func Resolve(c Cart, products []catalog.Product) Resolved {
	byID := make(map[uuid.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var out Resolved
	for _, id := range c.ProductIDs() {
		p, ok := byID[id]
		if !ok {
			continue
		}
		qty := c.items[id]
		line := Line{Product: p, Quantity: qty, LineTotal: qty * p.Price}
		out.Lines = append(out.Lines, line)
		out.Subtotal += line.LineTotal
		out.Count += qty
	}
	return out
}
