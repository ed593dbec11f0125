// Package cart models a visitor's shopping cart as an immutable value.
// Every mutating operation returns a new Cart; callers persist it through a Store.
package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// MaxLineQuantity caps the units of one product held in a cart
const MaxLineQuantity int64 = 999

// ErrQuantityTooLarge is returned when a line would exceed MaxLineQuantity
var ErrQuantityTooLarge = shared.NewDomainError("INVALID_QUANTITY",
	fmt.Sprintf("Quantity cannot exceed %d units per product", MaxLineQuantity))

// Cart maps product ids to positive quantities
type Cart struct {
	items map[uuid.UUID]int64
}

// New returns an empty cart
func New() Cart {
	return Cart{items: map[uuid.UUID]int64{}}
}

// FromMap builds a cart from raw quantities. Entries with qty <= 0 are
// dropped and larger ones are capped at MaxLineQuantity.
func FromMap(quantities map[uuid.UUID]int64) Cart {
	c := New()
	for id, qty := range quantities {
		if qty > 0 {
			c.items[id] = min(qty, MaxLineQuantity)
		}
	}
	return c
}

// Add returns a cart with qty more units of the product, saturating at
// MaxLineQuantity
func (c Cart) Add(productID uuid.UUID, qty int64) Cart {
	next := c.clone()
	if qty <= 0 {
		return next
	}
	held := next.items[productID]
	if qty > MaxLineQuantity-held {
		next.items[productID] = MaxLineQuantity
	} else {
		next.items[productID] = held + qty
	}
	return next
}

// TryAdd is Add that fails with ErrQuantityTooLarge instead of capping
func (c Cart) TryAdd(productID uuid.UUID, qty int64) (Cart, error) {
	if qty > MaxLineQuantity-c.items[productID] {
		return c, ErrQuantityTooLarge
	}
	return c.Add(productID, qty), nil
}

// Replace returns a cart holding exactly the given quantities.
// The previous contents are discarded, not merged.
func (c Cart) Replace(quantities map[uuid.UUID]int64) Cart {
	return FromMap(quantities)
}

// Remove returns a cart without the product
func (c Cart) Remove(productID uuid.UUID) Cart {
	next := c.clone()
	delete(next.items, productID)
	return next
}

// Clear returns an empty cart
func (c Cart) Clear() Cart {
	return New()
}

// Quantity returns the quantity held for a product
func (c Cart) Quantity(productID uuid.UUID) int64 {
	return c.items[productID]
}

// Count returns the total number of units in the cart
func (c Cart) Count() int64 {
	var n int64
	for _, qty := range c.items {
		n += qty
	}
	return n
}

// IsEmpty reports whether the cart holds no products
func (c Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the product-id to quantity mapping
func (c Cart) Items() map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(c.items))
	for id, qty := range c.items {
		out[id] = qty
	}
	return out
}

// ProductIDs returns the ids in the cart in a stable order
func (c Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

func (c Cart) clone() Cart {
	return Cart{items: c.Items()}
}

// Store persists carts per visitor session
type Store interface {
	// Load returns the session's cart, or an empty cart if none is stored
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
	// Take removes the session's cart and returns it in one step. Of two
	// concurrent calls at most one sees a non-empty cart.
	Take(ctx context.Context, sessionID string) (Cart, error)
}
