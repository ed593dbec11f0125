package models

import (
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shipping"
)

// ShippingRateModel is the persistence model for a shipping Rate.
// The region default is stored with an empty sub_region so the
// (region, sub_region) unique index also covers it.
type ShippingRateModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Region    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_shipping_rates_region_sub,priority:1"`
	SubRegion string    `gorm:"type:varchar(100);not null;default:'';uniqueIndex:idx_shipping_rates_region_sub,priority:2"`
	Price     int64     `gorm:"not null;default:0"`
	ETA       string    `gorm:"column:eta;type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (ShippingRateModel) TableName() string {
	return "shipping_rates"
}

// ToDomain converts the persistence model to a domain Rate.
func (m *ShippingRateModel) ToDomain() *shipping.Rate {
	r := &shipping.Rate{
		ID:     m.ID,
		Region: m.Region,
		Price:  m.Price,
		ETA:    m.ETA,
	}
	if m.SubRegion != "" {
		sub := m.SubRegion
		r.SubRegion = &sub
	}
	return r
}

// FromDomain populates the persistence model from a domain Rate.
func (m *ShippingRateModel) FromDomain(r *shipping.Rate) {
	m.ID = r.ID
	m.Region = r.Region
	m.SubRegion = SubRegionKey(r.SubRegion)
	m.Price = r.Price
	m.ETA = r.ETA
}

// SubRegionKey returns the stored form of an optional sub-region
func SubRegionKey(subRegion *string) string {
	if subRegion == nil {
		return ""
	}
	return *subRegion
}

// SubRegionModel is the persistence model for a named sub-region of a wilaya.
type SubRegionModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	Region string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sub_regions_region_name,priority:1"`
	Name   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_sub_regions_region_name,priority:2"`
}

// TableName returns the table name for GORM
func (SubRegionModel) TableName() string {
	return "sub_regions"
}

// ToDomain converts the persistence model to a domain SubRegion.
func (m *SubRegionModel) ToDomain() *shipping.SubRegion {
	return &shipping.SubRegion{
		ID:     m.ID,
		Region: m.Region,
		Name:   m.Name,
	}
}

// FromDomain populates the persistence model from a domain SubRegion.
func (m *SubRegionModel) FromDomain(s *shipping.SubRegion) {
	m.ID = s.ID
	m.Region = s.Region
	m.Name = s.Name
}
