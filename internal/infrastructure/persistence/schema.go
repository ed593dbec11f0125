package persistence

import "github.com/sadsod/storefront/internal/infrastructure/persistence/models"

// AllModels returns every persistence model in dependency order
func AllModels() []any {
	return []any{
		&models.ProductModel{},
		&models.ShippingRateModel{},
		&models.SubRegionModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.OrderSequenceModel{},
		&models.AdminUserModel{},
	}
}
