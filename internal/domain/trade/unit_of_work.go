package trade

import (
	"context"

	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shipping"
)

// TxRepositories are the repositories bound to a single transaction
type TxRepositories struct {
	Products catalog.ProductRepository
	Rates    shipping.RateLookup
	Orders   OrderRepository
	Sequence OrderSequence
}

// UnitOfWork runs fn in one transaction. Returning an error from fn rolls
// back every write made through repos.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos TxRepositories) error) error
}
