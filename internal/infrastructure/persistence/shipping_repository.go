package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/sadsod/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShippingRateRepository implements RateRepository using GORM
type GormShippingRateRepository struct {
	db *gorm.DB
}

// NewGormShippingRateRepository creates a new GormShippingRateRepository
func NewGormShippingRateRepository(db *gorm.DB) *GormShippingRateRepository {
	return &GormShippingRateRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormShippingRateRepository) WithTx(tx *gorm.DB) *GormShippingRateRepository {
	return &GormShippingRateRepository{db: tx}
}

// FindRate finds the rate for an exact (region, sub-region) pair
func (r *GormShippingRateRepository) FindRate(ctx context.Context, region string, subRegion *string) (*shipping.Rate, error) {
	var model models.ShippingRateModel
	if err := r.db.WithContext(ctx).
		Where("region = ? AND sub_region = ?", region, models.SubRegionKey(subRegion)).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByID finds a rate by its ID
func (r *GormShippingRateRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Rate, error) {
	var model models.ShippingRateModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns all rates ordered by region then sub-region, defaults first
func (r *GormShippingRateRepository) List(ctx context.Context) ([]shipping.Rate, error) {
	var rows []models.ShippingRateModel
	if err := r.db.WithContext(ctx).
		Order("region").
		Order("sub_region").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rates := make([]shipping.Rate, len(rows))
	for i := range rows {
		rates[i] = *rows[i].ToDomain()
	}
	return rates, nil
}

// Count returns the number of rate rows
func (r *GormShippingRateRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShippingRateModel{}).Count(&count).Error
	return count, err
}

// Save creates or updates a rate
func (r *GormShippingRateRepository) Save(ctx context.Context, rate *shipping.Rate) error {
	model := &models.ShippingRateModel{}
	model.FromDomain(rate)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes a rate
func (r *GormShippingRateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShippingRateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormSubRegionRepository implements SubRegionRepository using GORM
type GormSubRegionRepository struct {
	db *gorm.DB
}

// NewGormSubRegionRepository creates a new GormSubRegionRepository
func NewGormSubRegionRepository(db *gorm.DB) *GormSubRegionRepository {
	return &GormSubRegionRepository{db: db}
}

// FindByID finds a sub-region by its ID
func (r *GormSubRegionRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.SubRegion, error) {
	var model models.SubRegionModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ListByRegion returns the sub-regions of a region ordered by name
func (r *GormSubRegionRepository) ListByRegion(ctx context.Context, region string) ([]shipping.SubRegion, error) {
	var rows []models.SubRegionModel
	if err := r.db.WithContext(ctx).
		Where("region = ?", region).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSubRegions(rows), nil
}

// List returns all sub-regions ordered by region then name
func (r *GormSubRegionRepository) List(ctx context.Context) ([]shipping.SubRegion, error) {
	var rows []models.SubRegionModel
	if err := r.db.WithContext(ctx).
		Order("region").
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSubRegions(rows), nil
}

// Save creates or updates a sub-region
func (r *GormSubRegionRepository) Save(ctx context.Context, subRegion *shipping.SubRegion) error {
	model := &models.SubRegionModel{}
	model.FromDomain(subRegion)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes a sub-region
func (r *GormSubRegionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SubRegionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toSubRegions(rows []models.SubRegionModel) []shipping.SubRegion {
	subRegions := make([]shipping.SubRegion, len(rows))
	for i := range rows {
		subRegions[i] = *rows[i].ToDomain()
	}
	return subRegions
}

// Ensure the repositories implement their interfaces
var (
	_ shipping.RateRepository      = (*GormShippingRateRepository)(nil)
	_ shipping.SubRegionRepository = (*GormSubRegionRepository)(nil)
)
