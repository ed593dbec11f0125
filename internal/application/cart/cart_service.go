package cart

import (
	"context"
	"strings"

	"github.com/google/uuid"
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// ErrInvalidQuantity is returned when an add request carries a quantity below one
var ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")

// CartService manages the cart bound to a visitor session
type CartService struct {
	store    cart.Store
	products catalog.ProductRepository
	images   *catalogapp.ImageService
}

// NewCartService creates a new CartService. images may be nil.
func NewCartService(store cart.Store, products catalog.ProductRepository, images *catalogapp.ImageService) *CartService {
	return &CartService{
		store:    store,
		products: products,
		images:   images,
	}
}

// View returns the session cart priced against the current catalog
func (s *CartService) View(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Count returns the number of units in the session cart
func (s *CartService) Count(ctx context.Context, sessionID string) (int64, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.Count(), nil
}

// Add adds units of an existing product to the session cart
func (s *CartService) Add(ctx context.Context, sessionID string, req AddToCartRequest) (*CartResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, &shared.ParseError{Field: "product_id", Value: req.ProductID, Err: cart.ErrInvalidProductID}
	}
	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c, err = c.TryAdd(id, qty)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Update replaces the session cart with the submitted quantities.
// A malformed entry rejects the whole update and leaves the cart unchanged.
func (s *CartService) Update(ctx context.Context, sessionID string, req UpdateCartRequest) (*CartResponse, error) {
	quantities, err := cart.ParseQuantities(req.Items)
	if err != nil {
		return nil, err
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c = c.Replace(quantities)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Remove drops a product from the session cart
func (s *CartService) Remove(ctx context.Context, sessionID string, productID uuid.UUID) (*CartResponse, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	c = c.Remove(productID)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	return s.respond(ctx, c)
}

// Clear empties the session cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *CartService) respond(ctx context.Context, c cart.Cart) (*CartResponse, error) {
	var products []catalog.Product
	if !c.IsEmpty() {
		var err error
		products, err = s.products.FindByIDs(ctx, c.ProductIDs())
		if err != nil {
			return nil, err
		}
	}

	var imageURL func(string) string
	if s.images != nil {
		imageURL = s.images.URL
	}
	resp := ToCartResponse(cart.Resolve(c, products), imageURL)
	return &resp, nil
}
