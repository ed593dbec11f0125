package trade

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	oran      = "وهران"
	sessionID = "0c9a1b52-3f0e-4f5e-9a77-0b1d2c3e4f50"
)

var fixedNow = time.Date(2026, 3, 7, 22, 30, 0, 0, time.UTC)

type checkoutFixture struct {
	service  *CheckoutService
	uow      *fakeUnitOfWork
	carts    *memoryCarts
	products *MockProductRepository
	rates    *MockRateLookup
	orders   *MockOrderRepository
	sequence *MockOrderSequence
}

func newCheckoutFixture(cfg CheckoutConfig, opts ...CheckoutOption) *checkoutFixture {
	f := &checkoutFixture{
		carts:    newMemoryCarts(),
		products: new(MockProductRepository),
		rates:    new(MockRateLookup),
		orders:   new(MockOrderRepository),
		sequence: new(MockOrderSequence),
	}
	f.uow = &fakeUnitOfWork{repos: trade.TxRepositories{
		Products: f.products,
		Rates:    f.rates,
		Orders:   f.orders,
		Sequence: f.sequence,
	}}
	opts = append([]CheckoutOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	f.service = NewCheckoutService(f.uow, f.carts, cfg, nil, opts...)
	return f
}

func catalogProduct(t *testing.T, name string, price, stock int64) catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductAttributes{Name: name, Price: price, Stock: stock})
	require.NoError(t, err)
	return *p
}

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Name:    " Amina B ",
		Phone:   "0555123456",
		Region:  oran,
		Address: "12 rue Larbi Ben M'hidi",
	}
}

func defaultRate(t *testing.T, price int64) *shipping.Rate {
	t.Helper()
	r, err := shipping.NewRate(oran, nil, price, "24-72 ساعة")
	require.NoError(t, err)
	return r
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 01", 4800, 10)
	b := catalogProduct(t, "Sadsod 02", 5200, 3)
	c := cart.New().Add(a.ID, 2).Add(b.ID, 1)
	f.carts.carts[sessionID] = c

	key := "SADSOD-260307-"
	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a, b}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(defaultRate(t, 600), nil)
	f.sequence.On("Next", mock.Anything, key).Return(int64(0), nil, true)
	f.orders.On("CountByPrefix", mock.Anything, key).Return(int64(4), nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*trade.Order")).Return(nil)
	f.products.On("DecrementStock", mock.Anything, a.ID, int64(2), catalog.StockPolicyClamp).Return(nil)
	f.products.On("DecrementStock", mock.Anything, b.ID, int64(1), catalog.StockPolicyClamp).Return(nil)

	resp, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	require.NoError(t, err)

	assert.Equal(t, "SADSOD-260307-0005", resp.OrderNumber)
	assert.Equal(t, "Amina B", resp.CustomerName)
	assert.Equal(t, int64(2*4800+5200), resp.Subtotal)
	assert.Equal(t, int64(600), resp.DeliveryPrice)
	assert.Equal(t, int64(2*4800+5200+600), resp.Total)
	assert.Equal(t, "new", resp.Status)
	assert.Len(t, resp.Items, 2)

	_, ok := f.carts.carts[sessionID]
	assert.False(t, ok, "cart is emptied after the order commits")
	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestCheckoutService_ValidationRunsFirst(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	id := uuid.New()
	f.carts.carts[sessionID] = cart.New().Add(id, 1)

	req := validRequest()
	req.Phone = "  "
	req.Address = ""

	_, err := f.service.PlaceOrder(context.Background(), sessionID, "", req)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"phone", "address"}, verr.Fields)
	assert.Zero(t, f.uow.attempts)
	assert.Equal(t, int64(1), f.carts.carts[sessionID].Quantity(id), "cart untouched")
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	t.Run("nothing in the session", func(t *testing.T) {
		f := newCheckoutFixture(CheckoutConfig{})
		_, err := f.service.PlaceOrder(context.Background(), sessionID, "", validRequest())
		assert.ErrorIs(t, err, trade.ErrEmptyCart)
		assert.Zero(t, f.uow.attempts)
	})

	t.Run("every product was deleted", func(t *testing.T) {
		f := newCheckoutFixture(CheckoutConfig{})
		ctx := context.Background()
		c := cart.New().Add(uuid.New(), 2)
		f.carts.carts[sessionID] = c
		f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{}, nil)

		_, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
		assert.ErrorIs(t, err, trade.ErrEmptyCart)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_StrictStockRejects(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{StockPolicy: catalog.StockPolicyStrict})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 03", 3900, 1)
	c := cart.New().Add(a.ID, 5)
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(nil, shared.ErrNotFound)
	f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.products.On("DecrementStock", mock.Anything, a.ID, int64(5), catalog.StockPolicyStrict).Return(shared.ErrInsufficientStock)

	_, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, 1, f.uow.attempts, "stock failures are not retried")
	assert.Equal(t, int64(5), f.carts.carts[sessionID].Quantity(a.ID), "cart kept for another try")
}

func TestCheckoutService_RetriesOrderNumberCollision(t *testing.T) {
	metrics := new(MockOrderMetrics)
	f := newCheckoutFixture(CheckoutConfig{OrderPrefix: "sds", MaxAttempts: 3}, WithOrderMetrics(metrics))
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 04", 6100, 9)
	c := cart.New().Add(a.ID, 1)
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(defaultRate(t, 400), nil)
	f.sequence.On("Next", mock.Anything, "SDS-260307-").Return(int64(7), nil, false).Once()
	f.sequence.On("Next", mock.Anything, "SDS-260307-").Return(int64(8), nil, false).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *trade.Order) bool {
		return o.OrderNumber == "SDS-260307-0007"
	})).Return(shared.ErrAlreadyExists).Once()
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *trade.Order) bool {
		return o.OrderNumber == "SDS-260307-0008"
	})).Return(nil).Once()
	f.products.On("DecrementStock", mock.Anything, a.ID, int64(1), catalog.StockPolicyClamp).Return(nil).Once()
	metrics.On("RecordOrderPlaced", mock.Anything, oran, int64(6500), int64(1)).Once()

	resp, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	require.NoError(t, err)
	assert.Equal(t, "SDS-260307-0008", resp.OrderNumber)
	assert.Equal(t, 2, f.uow.attempts)
	metrics.AssertExpectations(t)
}

func TestCheckoutService_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{MaxAttempts: 2})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 01", 4800, 9)
	c := cart.New().Add(a.ID, 1)
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(nil, shared.ErrNotFound)
	f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

	_, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	assert.Equal(t, 2, f.uow.attempts)
}

func TestCheckoutService_SubRegionRate(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 02", 5200, 9)
	c := cart.New().Add(a.ID, 1)
	f.carts.carts[sessionID] = c

	exact, err := shipping.NewRate(oran, shared.OptionalString("عين الترك"), 350, "")
	require.NoError(t, err)

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "عين الترك").Return(exact, nil)
	f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.products.On("DecrementStock", mock.Anything, a.ID, int64(1), catalog.StockPolicyClamp).Return(nil)

	req := validRequest()
	req.SubRegion = "عين الترك"
	resp, err := f.service.PlaceOrder(ctx, sessionID, "", req)
	require.NoError(t, err)
	assert.Equal(t, int64(350), resp.DeliveryPrice)
	require.NotNil(t, resp.SubRegion)
	assert.Equal(t, "عين الترك", *resp.SubRegion)
}

func TestCheckoutService_IdempotencyKey(t *testing.T) {
	t.Run("duplicate submission is rejected", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		f := newCheckoutFixture(CheckoutConfig{IdempotencyTTL: time.Hour}, WithIdempotencyStore(store))
		ctx := context.Background()
		f.carts.carts[sessionID] = cart.New().Add(uuid.New(), 1)

		store.On("Claim", mock.Anything, "key-1", time.Hour).Return(false, nil)

		_, err := f.service.PlaceOrder(ctx, sessionID, "key-1", validRequest())
		assert.ErrorIs(t, err, shared.ErrDuplicateRequest)
		assert.Zero(t, f.uow.attempts)
	})

	t.Run("key is released when the order fails", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		f := newCheckoutFixture(CheckoutConfig{}, WithIdempotencyStore(store))
		ctx := context.Background()
		c := cart.New().Add(uuid.New(), 1)
		f.carts.carts[sessionID] = c

		store.On("Claim", mock.Anything, "key-2", 24*time.Hour).Return(true, nil)
		store.On("Release", mock.Anything, "key-2").Return(nil).Once()
		f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return(nil, errors.New("connection reset"))

		_, err := f.service.PlaceOrder(ctx, sessionID, "key-2", validRequest())
		assert.EqualError(t, err, "connection reset")
		store.AssertExpectations(t)
	})

	t.Run("key is kept after success", func(t *testing.T) {
		store := new(MockIdempotencyStore)
		f := newCheckoutFixture(CheckoutConfig{}, WithIdempotencyStore(store))
		ctx := context.Background()

		a := catalogProduct(t, "Sadsod 01", 4800, 2)
		c := cart.New().Add(a.ID, 1)
		f.carts.carts[sessionID] = c

		store.On("Claim", mock.Anything, "key-3", 24*time.Hour).Return(true, nil)
		f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
		f.rates.On("FindRate", mock.Anything, oran, "").Return(nil, shared.ErrNotFound)
		f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
		f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.products.On("DecrementStock", mock.Anything, a.ID, int64(1), catalog.StockPolicyClamp).Return(nil)

		_, err := f.service.PlaceOrder(ctx, sessionID, "key-3", validRequest())
		require.NoError(t, err)
		store.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_ConcurrentSubmitsOfOneSession(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 01", 4800, 10)
	c := cart.New().Add(a.ID, 2)
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(defaultRate(t, 600), nil)
	f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.products.On("DecrementStock", mock.Anything, a.ID, int64(2), catalog.StockPolicyClamp).Return(nil)

	const submits = 5
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
		empty  int
	)
	for range submits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, trade.ErrEmptyCart):
				empty++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, placed, "one order per cart")
	assert.Equal(t, submits-1, empty)
	assert.Equal(t, 1, f.uow.attempts)
	f.orders.AssertNumberOfCalls(t, "Create", 1)
	f.products.AssertNumberOfCalls(t, "DecrementStock", 1)
	_, ok := f.carts.carts[sessionID]
	assert.False(t, ok)
}

func TestCheckoutService_FailureRestoresCart(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 01", 4800, 10)
	added := uuid.New()
	c := cart.New().Add(a.ID, 2)
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).
		Run(func(mock.Arguments) {
			// the visitor adds a product while the order is being placed
			require.NoError(t, f.carts.Save(ctx, sessionID, cart.New().Add(added, 1).Add(a.ID, 1)))
		}).
		Return(nil, errors.New("connection reset"))

	_, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	assert.EqualError(t, err, "connection reset")

	restored := f.carts.carts[sessionID]
	assert.Equal(t, int64(3), restored.Quantity(a.ID))
	assert.Equal(t, int64(1), restored.Quantity(added))
}

func TestCheckoutService_CappedCartKeepsPositiveTotal(t *testing.T) {
	f := newCheckoutFixture(CheckoutConfig{})
	ctx := context.Background()

	a := catalogProduct(t, "Sadsod 01", 4800, 10)
	c := cart.New().Replace(map[uuid.UUID]int64{a.ID: 3843071682022823})
	f.carts.carts[sessionID] = c

	f.products.On("FindByIDs", mock.Anything, c.ProductIDs()).Return([]catalog.Product{a}, nil)
	f.rates.On("FindRate", mock.Anything, oran, "").Return(defaultRate(t, 600), nil)
	f.sequence.On("Next", mock.Anything, mock.Anything).Return(int64(1), nil, false)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.products.On("DecrementStock", mock.Anything, a.ID, cart.MaxLineQuantity, catalog.StockPolicyClamp).Return(nil)

	resp, err := f.service.PlaceOrder(ctx, sessionID, "", validRequest())
	require.NoError(t, err)
	assert.Equal(t, cart.MaxLineQuantity*4800+600, resp.Total)
	assert.Positive(t, resp.Total)
}
