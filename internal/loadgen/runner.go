package loadgen

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds load generator settings
type Config struct {
	BaseURL string
	// QPS is the journey start rate shared by all workers
	QPS   float64
	Burst int
	// Workers bounds concurrent journeys
	Workers int
	// Duration stops the run; zero runs until Journeys or ctx ends
	Duration time.Duration
	// Journeys stops after this many started journeys; zero is unbounded
	Journeys    int
	Seed        uint64
	MaxQuantity int
	Timeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.QPS <= 0 {
		c.QPS = 5
	}
	if c.Burst <= 0 {
		c.Burst = max(1, int(c.QPS))
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// StepReport summarises one journey step
type StepReport struct {
	Count       int64
	Errors      int64
	RateLimited int64
	P50         time.Duration
	P95         time.Duration
	Max         time.Duration
}

// Report summarises a run
type Report struct {
	Journeys int64
	Orders   int64
	Failures int64
	Elapsed  time.Duration
	Steps    map[string]StepReport
}

// Runner starts shopper journeys at a fixed rate
type Runner struct {
	cfg     Config
	plans   *PlanGenerator
	limiter *rate.Limiter
	logger  *zap.Logger

	mu    sync.Mutex
	steps map[string]*stepStats
}

type stepStats struct {
	latencies   []time.Duration
	errors      int64
	rateLimited int64
}

// NewRunner creates a Runner
func NewRunner(cfg Config, logger *zap.Logger) (*Runner, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	plans, err := NewPlanGenerator(cfg.Seed, cfg.MaxQuantity)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		plans:   plans,
		limiter: rate.NewLimiter(rate.Limit(cfg.QPS), cfg.Burst),
		logger:  logger,
		steps:   make(map[string]*stepStats),
	}, nil
}

// Record implements Recorder
func (r *Runner) Record(step string, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.steps[step]
	if !ok {
		s = &stepStats{}
		r.steps[step] = s
	}
	s.latencies = append(s.latencies, d)
	if err != nil {
		s.errors++
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusTooManyRequests {
			s.rateLimited++
		}
	}
}

// Run drives journeys until the duration, the journey count or ctx ends
func (r *Runner) Run(ctx context.Context) Report {
	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	var started, orders, failures atomic.Int64
	begin := time.Now()

	var wg sync.WaitGroup
	for i := range r.cfg.Workers {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				if err := r.limiter.Wait(ctx); err != nil {
					return
				}
				if n := started.Add(1); r.cfg.Journeys > 0 && n > int64(r.cfg.Journeys) {
					return
				}

				orderNumber, err := r.journey(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					failures.Add(1)
					r.logger.Debug("Journey failed", zap.Int("worker", worker), zap.Error(err))
					continue
				}
				orders.Add(1)
				r.logger.Debug("Order placed", zap.Int("worker", worker), zap.String("order_number", orderNumber))
			}
		}(i)
	}
	wg.Wait()

	journeys := started.Load()
	if r.cfg.Journeys > 0 && journeys > int64(r.cfg.Journeys) {
		journeys = int64(r.cfg.Journeys)
	}
	return Report{
		Journeys: journeys,
		Orders:   orders.Load(),
		Failures: failures.Load(),
		Elapsed:  time.Since(begin),
		Steps:    r.stepReports(),
	}
}

func (r *Runner) journey(ctx context.Context) (string, error) {
	shopper, err := NewShopper(r.cfg.BaseURL, r.cfg.Timeout, r)
	if err != nil {
		return "", err
	}
	return shopper.Journey(ctx, r.plans.Next())
}

func (r *Runner) stepReports() map[string]StepReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]StepReport, len(r.steps))
	for name, s := range r.steps {
		sorted := slices.Clone(s.latencies)
		slices.Sort(sorted)
		out[name] = StepReport{
			Count:       int64(len(sorted)),
			Errors:      s.errors,
			RateLimited: s.rateLimited,
			P50:         percentile(sorted, 0.50),
			P95:         percentile(sorted, 0.95),
			Max:         percentile(sorted, 1),
		}
	}
	return out
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}
