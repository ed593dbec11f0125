// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by entity tables
// - catalog.go: products
// - shipping.go: shipping_rates, sub_regions
// - trade.go: orders, order_items, order_sequences
// - identity.go: admin_users
package models
