package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StockProvider reports catalog stock levels for the periodic gauges.
type StockProvider interface {
	CountOutOfStock(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int64) (int64, error)
}

// BusinessMetricsConfig configures BusinessMetrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	StockProvider     StockProvider
	LowStockThreshold int64 // default 3
}

// BusinessMetrics records storefront sales and catalog health.
type BusinessMetrics struct {
	ordersPlaced *Counter
	revenue      *Counter
	itemsSold    *Counter
	outOfStock   *Gauge
	lowStock     *Gauge

	stock     StockProvider
	threshold int64
	logger    *zap.Logger

	collectOnce sync.Once
	stopOnce    sync.Once
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewBusinessMetrics creates the order and stock instruments.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 3
	}

	bm := &BusinessMetrics{
		stock:     cfg.StockProvider,
		threshold: cfg.LowStockThreshold,
		logger:    cfg.Logger,
		stopChan:  make(chan struct{}),
	}

	var err error
	if bm.ordersPlaced, err = NewCounter(cfg.Meter, "sadsod_orders_placed_total", "Total number of orders placed", "{order}"); err != nil {
		return nil, err
	}
	if bm.revenue, err = NewCounter(cfg.Meter, "sadsod_order_revenue_total", "Order totals including delivery, in dinars", "{DZD}"); err != nil {
		return nil, err
	}
	if bm.itemsSold, err = NewCounter(cfg.Meter, "sadsod_order_items_total", "Units sold across all orders", "{unit}"); err != nil {
		return nil, err
	}
	if bm.outOfStock, err = NewGauge(cfg.Meter, "sadsod_products_out_of_stock", "Products with no stock left", "{product}"); err != nil {
		return nil, err
	}
	if bm.lowStock, err = NewGauge(cfg.Meter, "sadsod_products_low_stock", "Products at or below the low stock threshold", "{product}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderPlaced counts a placed order against its delivery region.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, region string, total, items int64) {
	attr := AttrRegion.String(region)
	bm.ordersPlaced.Inc(ctx, attr)
	bm.revenue.Add(ctx, total, attr)
	bm.itemsSold.Add(ctx, items, attr)
}

// StartPeriodicCollection refreshes the stock gauges every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.stock == nil {
		bm.logger.Debug("No stock provider configured, skipping stock metrics")
		return
	}
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		bm.wg.Add(1)
		go bm.run(ctx, interval)
	})
}

func (bm *BusinessMetrics) run(ctx context.Context, interval time.Duration) {
	defer bm.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectStock(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectStock(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectStock(ctx context.Context) {
	if n, err := bm.stock.CountOutOfStock(ctx); err != nil {
		bm.logger.Warn("Failed to count out of stock products", zap.Error(err))
	} else {
		bm.outOfStock.Record(ctx, n)
	}
	if n, err := bm.stock.CountLowStock(ctx, bm.threshold); err != nil {
		bm.logger.Warn("Failed to count low stock products", zap.Error(err))
	} else {
		bm.lowStock.Record(ctx, n)
	}
}

// Stop ends periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
		bm.wg.Wait()
	})
}

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError describes a failure to build instruments.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
