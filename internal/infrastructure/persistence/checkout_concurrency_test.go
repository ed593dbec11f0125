package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	tradeapp "github.com/sadsod/storefront/internal/application/trade"
	"github.com/sadsod/storefront/internal/domain/cart"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"github.com/sadsod/storefront/internal/domain/trade"
	"github.com/sadsod/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// checkoutRig places orders through the checkout service over a real
// database. Each order gets a fresh session whose cart holds the lines.
type checkoutRig struct {
	uow   trade.UnitOfWork
	carts *cache.InMemoryCartStore
}

func newCheckoutRig(t *testing.T, db *gorm.DB) *checkoutRig {
	t.Helper()
	carts := cache.NewInMemoryCartStore(time.Hour)
	t.Cleanup(func() { _ = carts.Close() })
	return &checkoutRig{uow: NewGormUnitOfWork(db), carts: carts}
}

func (r *checkoutRig) service(policy catalog.StockPolicy) *tradeapp.CheckoutService {
	return tradeapp.NewCheckoutService(r.uow, r.carts, tradeapp.CheckoutConfig{StockPolicy: policy}, nil)
}

func (r *checkoutRig) place(ctx context.Context, req tradeapp.CheckoutRequest, lines map[uuid.UUID]int64, policy catalog.StockPolicy) (*tradeapp.OrderResponse, error) {
	sessionID := uuid.NewString()
	if err := r.carts.Save(ctx, sessionID, cart.FromMap(lines)); err != nil {
		return nil, err
	}
	return r.service(policy).PlaceOrder(ctx, sessionID, "", req)
}

func fakeCheckout(region string) tradeapp.CheckoutRequest {
	return tradeapp.CheckoutRequest{
		Name:    gofakeit.Name(),
		Phone:   gofakeit.Numerify("05########"),
		Region:  region,
		Address: gofakeit.Street(),
	}
}

// SQLite runs with a single connection, so these tests check the write
// path and its rollbacks; the PostgreSQL integration tests exercise real
// contention between transactions.
func TestCheckout_ConcurrentOrderNumbersAreUnique(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	products := NewGormProductRepository(db.DB)
	rig := newCheckoutRig(t, db.DB)

	attrs := productAttrs("Sadsod 03", 3900)
	attrs.Stock = 5
	product := seedProduct(t, products, attrs)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]int)
		errs    []error
	)
	inputs := make([]tradeapp.CheckoutRequest, workers)
	for i := range inputs {
		inputs[i] = fakeCheckout("وهران")
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(input tradeapp.CheckoutRequest) {
			defer wg.Done()
			order, err := rig.place(ctx, input, map[uuid.UUID]int64{product.ID: 1}, catalog.StockPolicyClamp)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers[order.OrderNumber]++
		}(inputs[i])
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, numbers, workers)
	for number, seen := range numbers {
		assert.Equal(t, 1, seen, number)
	}

	count, err := NewGormOrderRepository(db.DB).Count(ctx, trade.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(workers), count)

	stocked, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stocked.Stock, "clamped, never negative")
}

func TestCheckout_Pipeline(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	products := NewGormProductRepository(db.DB)
	orders := NewGormOrderRepository(db.DB)
	rig := newCheckoutRig(t, db.DB)

	rate, err := shipping.NewRate("وهران", nil, 600, "24-72 ساعة")
	require.NoError(t, err)
	require.NoError(t, NewGormShippingRateRepository(db.DB).Save(ctx, rate))

	first := productAttrs("Sadsod 01", 4800)
	first.Stock = 12
	p1 := seedProduct(t, products, first)
	second := productAttrs("Sadsod 02", 5200)
	second.Stock = 8
	p2 := seedProduct(t, products, second)

	t.Run("totals and stock", func(t *testing.T) {
		order, err := rig.place(ctx, fakeCheckout("وهران"), map[uuid.UUID]int64{p1.ID: 2, p2.ID: 1}, catalog.StockPolicyClamp)
		require.NoError(t, err)

		assert.Equal(t, int64(15400), order.Total)
		assert.Equal(t, int64(600), order.DeliveryPrice)

		stored, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)
		assert.Equal(t, int64(15400), stored.Total)

		after1, _ := products.FindByID(ctx, p1.ID)
		after2, _ := products.FindByID(ctx, p2.ID)
		assert.Equal(t, int64(10), after1.Stock)
		assert.Equal(t, int64(7), after2.Stock)
	})

	t.Run("missing rate charges nothing", func(t *testing.T) {
		order, err := rig.place(ctx, fakeCheckout("أدرار"), map[uuid.UUID]int64{p1.ID: 1}, catalog.StockPolicyClamp)
		require.NoError(t, err)
		assert.Equal(t, int64(0), order.DeliveryPrice)
		assert.Equal(t, int64(4800), order.Total)
	})

	t.Run("strict oversell rolls back every write", func(t *testing.T) {
		before, err := orders.Count(ctx, trade.OrderFilter{})
		require.NoError(t, err)

		_, err = rig.place(ctx, fakeCheckout("وهران"), map[uuid.UUID]int64{p2.ID: 100}, catalog.StockPolicyStrict)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		after, err := orders.Count(ctx, trade.OrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, before, after)
		stocked, _ := products.FindByID(ctx, p2.ID)
		assert.Equal(t, int64(7), stocked.Stock)
	})

	t.Run("blank address leaves no rows", func(t *testing.T) {
		before, err := orders.Count(ctx, trade.OrderFilter{})
		require.NoError(t, err)

		input := fakeCheckout("وهران")
		input.Address = "  "
		_, err = rig.place(ctx, input, map[uuid.UUID]int64{p1.ID: 1}, catalog.StockPolicyClamp)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.HasField("address"))

		after, err := orders.Count(ctx, trade.OrderFilter{})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("numbers continue the day's sequence", func(t *testing.T) {
		key := trade.SequenceKey(trade.DefaultOrderPrefix, time.Now())
		order, err := rig.place(ctx, fakeCheckout("وهران"), map[uuid.UUID]int64{p1.ID: 1}, catalog.StockPolicyClamp)
		require.NoError(t, err)
		// two earlier orders committed; the rolled back attempts consumed nothing
		assert.Equal(t, trade.FormatOrderNumber(key, 3), order.OrderNumber)
	})
}

func TestCheckout_RepeatedSubmitOfOneCart(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	products := NewGormProductRepository(db.DB)
	rig := newCheckoutRig(t, db.DB)

	attrs := productAttrs("Sadsod 05", 4100)
	attrs.Stock = 10
	product := seedProduct(t, products, attrs)

	sessionID := uuid.NewString()
	require.NoError(t, rig.carts.Save(ctx, sessionID, cart.New().Add(product.ID, 2)))
	service := rig.service(catalog.StockPolicyClamp)
	req := fakeCheckout("وهران")

	const submits = 5
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for range submits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.PlaceOrder(ctx, sessionID, "", req)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				placed++
				return
			}
			assert.ErrorIs(t, err, trade.ErrEmptyCart)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, placed)
	count, err := NewGormOrderRepository(db.DB).Count(ctx, trade.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	stocked, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stocked.Stock)
}
