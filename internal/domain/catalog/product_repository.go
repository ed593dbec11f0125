package catalog

import (
	"context"

	"github.com/google/uuid"
)

// StockPolicy controls how stock is decremented when an order asks for more
// units than are available.
type StockPolicy string

const (
	// StockPolicyClamp decrements stock and floors it at zero; the sale goes through.
	StockPolicyClamp StockPolicy = "clamp"
	// StockPolicyStrict rejects the decrement when stock is insufficient.
	StockPolicyStrict StockPolicy = "strict"
)

// ProductFilter narrows a catalog listing
type ProductFilter struct {
	Query    string // substring match on the product name
	Category string // exact category match
	SortBy   string // column name; unknown values fall back to created_at
	SortDir  string // asc or desc
	Limit    int
	Offset   int
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// List returns products matching the filter, most recent first
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	Count(ctx context.Context, filter ProductFilter) (int64, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	Latest(ctx context.Context, limit int) ([]Product, error)
	Categories(ctx context.Context) ([]string, error)

	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ExistsBySlugExcluding(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)

	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementStock atomically reduces stock by qty according to the policy.
	// StockPolicyStrict returns shared.ErrInsufficientStock when fewer than qty units remain.
	DecrementStock(ctx context.Context, id uuid.UUID, qty int64, policy StockPolicy) error
}
