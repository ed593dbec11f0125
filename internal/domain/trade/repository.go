package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderFilter narrows an admin order listing
type OrderFilter struct {
	Status  OrderStatus
	Region  string
	// Query matches the order number or phone by prefix
	Query   string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID returns the order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByNumberAndPhone matches both values exactly
	FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*Order, error)
	// List returns orders newest first, without items
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	// CountByPrefix counts orders whose number starts with prefix
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	// Stats aggregates orders created at or after since
	Stats(ctx context.Context, since time.Time) (OrderStats, error)

	// Create inserts the order and its items
	Create(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

// OrderStats is an aggregate over a set of orders
type OrderStats struct {
	Orders  int64
	Revenue int64
}

// OrderSequence hands out per-key counters that are never reused
type OrderSequence interface {
	// Next increments and returns the counter for key. seed is called only
	// when the counter does not exist yet, to start numbering after existing data.
	Next(ctx context.Context, key string, seed func(ctx context.Context) (int64, error)) (int64, error)
}
