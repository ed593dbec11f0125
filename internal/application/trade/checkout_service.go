package trade

import (
	"context"
	"errors"
	"time"

	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/sadsod/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 3

// OrderMetrics records placed orders
type OrderMetrics interface {
	RecordOrderPlaced(ctx context.Context, region string, total, items int64)
}

// CheckoutConfig configures order placement
type CheckoutConfig struct {
	OrderPrefix string
	StockPolicy catalog.StockPolicy
	// MaxAttempts bounds retries after an order number collision
	MaxAttempts    int
	IdempotencyTTL time.Duration
}

// CheckoutOption configures a CheckoutService
type CheckoutOption func(*CheckoutService)

// WithIdempotencyStore rejects repeated submissions carrying the same key
func WithIdempotencyStore(store shared.IdempotencyStore) CheckoutOption {
	return func(s *CheckoutService) {
		s.idempotency = store
	}
}

// WithOrderMetrics records every placed order
func WithOrderMetrics(metrics OrderMetrics) CheckoutOption {
	return func(s *CheckoutService) {
		s.metrics = metrics
	}
}

// WithClock overrides the clock used for the order number date
func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// CheckoutService turns a session cart into an order
type CheckoutService struct {
	uow         trade.UnitOfWork
	carts       cart.Store
	cfg         CheckoutConfig
	idempotency shared.IdempotencyStore
	metrics     OrderMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(uow trade.UnitOfWork, carts cart.Store, cfg CheckoutConfig, logger *zap.Logger, opts ...CheckoutOption) *CheckoutService {
	if cfg.OrderPrefix == "" {
		cfg.OrderPrefix = trade.DefaultOrderPrefix
	}
	if cfg.StockPolicy == "" {
		cfg.StockPolicy = catalog.StockPolicyClamp
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = shared.DefaultIdempotencyConfig().TTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &CheckoutService{
		uow:    uow,
		carts:  carts,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder places an order from the session cart. Validation happens
// before anything is read or written; the order, its items, the number
// allocation and the stock decrement commit together. The session cart is
// taken before the transaction and put back if the order is not placed.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID, idempotencyKey string, req CheckoutRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order")
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	input := req.Input()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	input = input.Normalize()

	if s.idempotency != nil && idempotencyKey != "" {
		claimed, err := s.idempotency.Claim(ctx, idempotencyKey, s.cfg.IdempotencyTTL)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, shared.ErrDuplicateRequest
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyKey); relErr != nil {
				s.logger.Warn("Failed to release idempotency key",
					zap.String("key", idempotencyKey),
					zap.Error(relErr),
				)
			}
		}()
	}

	// Taking the cart serializes checkouts of one session: a second
	// submission racing this one finds the cart already gone.
	c, err := s.carts.Take(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, trade.ErrEmptyCart
	}
	defer func() {
		if err != nil {
			s.restoreCart(context.WithoutCancel(ctx), sessionID, c)
		}
	}()

	labels := telemetry.OperationLabels("checkout.place_order", map[string]string{
		telemetry.ProfilingLabelWilaya: input.Region,
	})
	var order *trade.Order
	for attempt := 1; ; attempt++ {
		telemetry.WithProfilingLabels(ctx, labels, func(ctx context.Context) {
			order, err = s.place(ctx, c, input)
		})
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrAlreadyExists) || attempt >= s.cfg.MaxAttempts {
			return nil, err
		}
		telemetry.AddEvent(span, "order_number_collision", telemetry.SpanAttrAttempt, attempt)
		s.logger.Info("Order number collision, retrying checkout",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.OrderNumber,
		telemetry.SpanAttrRegion, order.Region,
		telemetry.SpanAttrAmount, order.Total,
	)
	if s.metrics != nil {
		s.metrics.RecordOrderPlaced(ctx, order.Region, order.Total, order.ItemCount())
	}
	s.logger.Info("Order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(order.Items)),
	)

	out := ToOrderResponse(order)
	return &out, nil
}

// restoreCart puts a taken cart back after a failed checkout, merged with
// anything the visitor added meanwhile
func (s *CheckoutService) restoreCart(ctx context.Context, sessionID string, taken cart.Cart) {
	current, err := s.carts.Load(ctx, sessionID)
	if err == nil {
		for id, qty := range taken.Items() {
			current = current.Add(id, qty)
		}
		err = s.carts.Save(ctx, sessionID, current)
	}
	if err != nil {
		s.logger.Warn("Failed to restore cart after checkout failure",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (s *CheckoutService) place(ctx context.Context, c cart.Cart, input trade.CheckoutInput) (*trade.Order, error) {
	var placed *trade.Order
	err := s.uow.Do(ctx, func(repos trade.TxRepositories) error {
		products, err := repos.Products.FindByIDs(ctx, c.ProductIDs())
		if err != nil {
			return err
		}
		resolved := cart.Resolve(c, products)
		if resolved.IsEmpty() {
			return trade.ErrEmptyCart
		}

		quote, err := shipping.Resolve(ctx, repos.Rates, input.Region, input.SubRegion)
		if err != nil {
			return err
		}

		key := trade.SequenceKey(s.cfg.OrderPrefix, s.now())
		seq, err := repos.Sequence.Next(ctx, key, func(ctx context.Context) (int64, error) {
			return repos.Orders.CountByPrefix(ctx, key)
		})
		if err != nil {
			return err
		}

		order, err := trade.NewOrder(trade.FormatOrderNumber(key, seq), input, quote.Price)
		if err != nil {
			return err
		}
		for _, line := range resolved.Lines {
			if _, err := order.AddItem(line.Product.ID, line.Product.Name, line.Quantity, line.Product.Price); err != nil {
				return err
			}
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}

		for _, line := range resolved.Lines {
			if err := repos.Products.DecrementStock(ctx, line.Product.ID, line.Quantity, s.cfg.StockPolicy); err != nil {
				return err
			}
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}
