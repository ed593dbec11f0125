package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/sadsod/storefront/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: tx}
}

// FindByID finds an order by its ID, items included
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name") }).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByNumberAndPhone finds an order whose number and phone both match exactly
func (r *GormOrderRepository) FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("product_name") }).
		Where("order_number = ? AND phone = ?", orderNumber, phone).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns orders matching the filter without their items
func (r *GormOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	sortField := ValidateSortField(filter.SortBy, OrderSortFields, "created_at")
	sortDir := ValidateSortOrder(filter.SortDir)

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).
		Order(fmt.Sprintf("%s %s", sortField, sortDir)).
		Order("order_number DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []models.OrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter trade.OrderFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if region := strings.TrimSpace(filter.Region); region != "" {
		query = query.Where("region = ?", region)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := prefixPattern(q)
		query = query.Where(`(order_number LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return query
}

// CountByPrefix counts orders whose number starts with prefix
func (r *GormOrderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where(`order_number LIKE ? ESCAPE '\'`, prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Stats aggregates order count and revenue for orders created at or after since
func (r *GormOrderRepository) Stats(ctx context.Context, since time.Time) (trade.OrderStats, error) {
	var row struct {
		Orders  int64
		Revenue int64
	}
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue")
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since.UTC())
	}
	if err := query.Scan(&row).Error; err != nil {
		return trade.OrderStats{}, err
	}
	return trade.OrderStats{Orders: row.Orders, Revenue: row.Revenue}, nil
}

// Create inserts the order header then its items
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	model := &models.OrderModel{}
	model.FromDomain(order)
	items := model.Items
	model.Items = nil

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	if len(items) > 0 {
		for i := range items {
			items[i].OrderID = model.ID
		}
		if err := db.Create(&items).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

// UpdateStatus sets the status of an order
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status trade.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
