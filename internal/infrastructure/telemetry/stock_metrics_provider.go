package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormStockProvider implements StockProvider over the products table.
type GormStockProvider struct {
	db *gorm.DB
}

// NewGormStockProvider creates a new GormStockProvider.
func NewGormStockProvider(db *gorm.DB) *GormStockProvider {
	return &GormStockProvider{db: db}
}

// CountOutOfStock returns the number of products with no stock.
func (p *GormStockProvider) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("products").Where("stock <= 0").Count(&count).Error
	return count, err
}

// CountLowStock returns the number of products still in stock but at or below threshold.
func (p *GormStockProvider) CountLowStock(ctx context.Context, threshold int64) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Table("products").
		Where("stock > 0 AND stock <= ?", threshold).
		Count(&count).Error
	return count, err
}
