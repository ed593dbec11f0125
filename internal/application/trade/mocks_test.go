package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Latest(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ExistsBySlugExcluding(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int64, policy catalog.StockPolicy) error {
	args := m.Called(ctx, id, qty, policy)
	return args.Error(0)
}

// MockRateLookup is a mock implementation of RateLookup
type MockRateLookup struct {
	mock.Mock
}

func (m *MockRateLookup) FindRate(ctx context.Context, region string, subRegion *string) (*shipping.Rate, error) {
	var key string
	if subRegion != nil {
		key = *subRegion
	}
	args := m.Called(ctx, region, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Rate), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumberAndPhone(ctx context.Context, orderNumber, phone string) (*trade.Order, error) {
	args := m.Called(ctx, orderNumber, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Stats(ctx context.Context, since time.Time) (trade.OrderStats, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(trade.OrderStats), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status trade.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockOrderSequence is a mock implementation of OrderSequence.
// The seed callback is invoked when the expectation says so.
type MockOrderSequence struct {
	mock.Mock
	seeded []int64
}

func (m *MockOrderSequence) Next(ctx context.Context, key string, seed func(ctx context.Context) (int64, error)) (int64, error) {
	args := m.Called(ctx, key)
	if args.Bool(2) && seed != nil {
		start, err := seed(ctx)
		if err != nil {
			return 0, err
		}
		m.seeded = append(m.seeded, start)
		return start + 1, nil
	}
	return args.Get(0).(int64), args.Error(1)
}

// fakeUnitOfWork hands the same repositories to every transaction and
// counts attempts
type fakeUnitOfWork struct {
	repos    trade.TxRepositories
	attempts int
}

func (u *fakeUnitOfWork) Do(_ context.Context, fn func(repos trade.TxRepositories) error) error {
	u.attempts++
	return fn(u.repos)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

// MockOrderMetrics is a mock implementation of OrderMetrics
type MockOrderMetrics struct {
	mock.Mock
}

func (m *MockOrderMetrics) RecordOrderPlaced(ctx context.Context, region string, total, items int64) {
	m.Called(ctx, region, total, items)
}

// memoryCarts keeps carts in a map
type memoryCarts struct {
	mu    sync.Mutex
	carts map[string]cart.Cart
}

func newMemoryCarts() *memoryCarts {
	return &memoryCarts{carts: map[string]cart.Cart{}}
}

func (s *memoryCarts) Load(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c, nil
	}
	return cart.New(), nil
}

func (s *memoryCarts) Save(_ context.Context, sessionID string, c cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = c
	return nil
}

func (s *memoryCarts) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *memoryCarts) Take(_ context.Context, sessionID string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[sessionID]
	delete(s.carts, sessionID)
	if !ok {
		return cart.New(), nil
	}
	return c, nil
}
