package persistence

import (
	"context"

	"github.com/sadsod/storefront/internal/domain/trade"
	"gorm.io/gorm"
)

// GormUnitOfWork implements trade.UnitOfWork with a GORM transaction
type GormUnitOfWork struct {
	db       *gorm.DB
	products *GormProductRepository
	rates    *GormShippingRateRepository
	orders   *GormOrderRepository
	sequence *GormOrderSequence
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:       db,
		products: NewGormProductRepository(db),
		rates:    NewGormShippingRateRepository(db),
		orders:   NewGormOrderRepository(db),
		sequence: NewGormOrderSequence(db),
	}
}

// Do runs fn inside a transaction with transaction-scoped repositories
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos trade.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(trade.TxRepositories{
			Products: u.products.WithTx(tx),
			Rates:    u.rates.WithTx(tx),
			Orders:   u.orders.WithTx(tx),
			Sequence: u.sequence.WithTx(tx),
		})
	})
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ trade.UnitOfWork = (*GormUnitOfWork)(nil)
