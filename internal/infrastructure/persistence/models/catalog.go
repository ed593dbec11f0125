package models

import (
	"github.com/sadsod/storefront/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	Name        string `gorm:"type:varchar(140);not null"`
	Slug        string `gorm:"type:varchar(160);not null;uniqueIndex:idx_products_slug"`
	Category    string `gorm:"type:varchar(80);not null;index"`
	Price       int64  `gorm:"not null;default:0"`
	OldPrice    *int64
	Stock       int64  `gorm:"not null;default:0"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"type:varchar(500)"`
	Featured    bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Slug:        m.Slug,
		Category:    m.Category,
		Price:       m.Price,
		OldPrice:    m.OldPrice,
		Stock:       m.Stock,
		Description: m.Description,
		Image:       m.Image,
		Featured:    m.Featured,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Category = p.Category
	m.Price = p.Price
	m.OldPrice = p.OldPrice
	m.Stock = p.Stock
	m.Description = p.Description
	m.Image = p.Image
	m.Featured = p.Featured
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
