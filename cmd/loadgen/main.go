package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sadsod/storefront/internal/infrastructure/logger"
	"github.com/sadsod/storefront/internal/loadgen"
	"go.uber.org/zap"
)

func main() {
	var (
		cfg      loadgen.Config
		logLevel string
	)
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "Storefront base URL")
	flag.Float64Var(&cfg.QPS, "qps", 5, "Journeys started per second")
	flag.IntVar(&cfg.Burst, "burst", 0, "Token bucket burst (default: qps)")
	flag.IntVar(&cfg.Workers, "workers", 4, "Concurrent shoppers")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "Run length (0 = until -journeys or Ctrl-C)")
	flag.IntVar(&cfg.Journeys, "journeys", 0, "Stop after this many journeys (0 = unbounded)")
	flag.Uint64Var(&cfg.Seed, "seed", 0, "Fake data seed (0 = random)")
	flag.IntVar(&cfg.MaxQuantity, "max-qty", 3, "Largest quantity added to a cart")
	flag.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.TimeOnly,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	runner, err := loadgen.NewRunner(cfg, log)
	if err != nil {
		log.Fatal("Invalid load generator configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Load generation started",
		zap.String("url", cfg.BaseURL),
		zap.Float64("qps", cfg.QPS),
		zap.Int("workers", cfg.Workers),
		zap.Duration("duration", cfg.Duration),
		zap.Int("journeys", cfg.Journeys),
	)
	report := runner.Run(ctx)

	log.Info("Load generation finished",
		zap.Int64("journeys", report.Journeys),
		zap.Int64("orders", report.Orders),
		zap.Int64("failures", report.Failures),
		zap.Duration("elapsed", report.Elapsed),
	)
	printReport(report)

	if report.Journeys > 0 && report.Orders == 0 {
		os.Exit(1)
	}
}

func printReport(report loadgen.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "step\tcount\terrors\t429\tp50\tp95\tmax\t")

	order := []string{loadgen.StepProducts, loadgen.StepCartAdd, loadgen.StepQuote, loadgen.StepCheckout}
	for name := range report.Steps {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	for _, name := range order {
		s, ok := report.Steps[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\t\n",
			name, s.Count, s.Errors, s.RateLimited,
			s.P50.Round(time.Microsecond), s.P95.Round(time.Microsecond), s.Max.Round(time.Microsecond))
	}
	_ = w.Flush()

	if report.Elapsed > 0 {
		fmt.Printf("\n%d orders in %s (%.1f orders/s)\n",
			report.Orders, report.Elapsed.Round(time.Millisecond), float64(report.Orders)/report.Elapsed.Seconds())
	}
}
