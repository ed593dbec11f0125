package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultOrderPageSize = 20
	recentOrdersLimit    = 10
)

// ErrOrderNotFound is returned by tracking for any number and phone pair
// that does not match an order
var ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "No order matches this number and phone")

// OrderService handles order tracking and order administration
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo trade.OrderRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Track finds an order by its number and the phone it was placed with.
// A wrong number and a wrong phone are indistinguishable to the caller.
func (s *OrderService) Track(ctx context.Context, req TrackOrderRequest) (*OrderResponse, error) {
	number := strings.TrimSpace(req.OrderNumber)
	phone := strings.TrimSpace(req.Phone)

	var missing []string
	if number == "" {
		missing = append(missing, "order_number")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, shared.NewValidationError(missing...)
	}

	order, err := s.orderRepo.FindByNumberAndPhone(ctx, number, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns a page of orders, newest first
func (s *OrderService) List(ctx context.Context, query OrderListQuery) (*shared.Paginated[OrderListItemResponse], error) {
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultOrderPageSize
	}

	filter := trade.OrderFilter{
		Region:  strings.TrimSpace(query.Region),
		Query:   strings.TrimSpace(query.Query),
		SortBy:  query.SortBy,
		SortDir: query.SortDir,
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		filter.Status = trade.OrderStatus(status)
		if !filter.Status.IsValid() {
			return nil, invalidStatus(status)
		}
	}

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToOrderListItemResponses(orders), total, page, pageSize)
	return &result, nil
}

// Get returns an order with its items
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// UpdateStatus moves an order to any known status
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	target := trade.OrderStatus(strings.TrimSpace(req.Status))
	if !target.IsValid() {
		return nil, invalidStatus(req.Status)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prev, err := order.SetStatus(target)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", prev.String()),
		zap.String("to", target.String()),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Statuses returns the status vocabulary with display labels
func (s *OrderService) Statuses() []StatusResponse {
	return StatusVocabulary()
}

// Dashboard summarises today's orders (UTC) and the store totals
func (s *OrderService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	today, err := s.orderRepo.Stats(ctx, startOfDay)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orderRepo.Count(ctx, trade.OrderFilter{})
	if err != nil {
		return nil, err
	}
	totalProducts, err := s.productRepo.Count(ctx, catalog.ProductFilter{})
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.List(ctx, trade.OrderFilter{Limit: recentOrdersLimit})
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		OrdersToday:       today.Orders,
		RevenueToday:      today.Revenue,
		AverageOrderToday: averageOrder(today).StringFixed(2),
		TotalOrders:       totalOrders,
		TotalProducts:     totalProducts,
		RecentOrders:      ToOrderListItemResponses(recent),
		Statuses:          StatusVocabulary(),
	}, nil
}

func averageOrder(stats trade.OrderStats) decimal.Decimal {
	if stats.Orders == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(stats.Revenue).
		Div(decimal.NewFromInt(stats.Orders)).
		Round(2)
}

func invalidStatus(status string) error {
	return shared.NewDomainError("INVALID_STATUS", "Unknown order status: "+status)
}
