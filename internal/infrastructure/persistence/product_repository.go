package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: tx}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the products with the given IDs. Missing IDs are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// List returns products matching the filter
func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	sortField := ValidateSortField(filter.SortBy, ProductSortFields, "created_at")
	sortDir := ValidateSortOrder(filter.SortDir)

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).
		Order(fmt.Sprintf("%s %s", sortField, sortDir)).
		Order("id")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(q))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		query = query.Where("category = ?", c)
	}
	return query
}

// Featured returns the most recent featured products
func (r *GormProductRepository) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Latest returns the most recently created products
func (r *GormProductRepository) Latest(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Categories returns the distinct non-empty categories in alphabetical order
func (r *GormProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ExistsBySlug checks if a product with the given slug exists
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsBySlugExcluding checks if another product already uses the slug
func (r *GormProductRepository) ExistsBySlugExcluding(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecrementStock reduces stock in a single UPDATE so concurrent checkouts
// cannot read-modify-write over each other.
func (r *GormProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int64, policy catalog.StockPolicy) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	var result *gorm.DB
	switch policy {
	case catalog.StockPolicyStrict:
		result = query.
			Where("id = ? AND stock >= ?", id, qty).
			UpdateColumns(map[string]any{
				"stock":      gorm.Expr("stock - ?", qty),
				"updated_at": time.Now().UTC(),
			})
	default:
		result = query.
			Where("id = ?", id).
			UpdateColumns(map[string]any{
				"stock":      gorm.Expr("CASE WHEN stock > ? THEN stock - ? ELSE 0 END", qty, qty),
				"updated_at": time.Now().UTC(),
			})
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if policy == catalog.StockPolicyStrict {
			exists, err := r.exists(ctx, id)
			if err != nil {
				return err
			}
			if exists {
				return shared.ErrInsufficientStock
			}
		}
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
