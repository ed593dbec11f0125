package shipping

import (
	"context"
	"errors"
	"strings"

	"github.com/sadsod/storefront/internal/domain/shared"
)

// QuoteSource tells which row a quote was resolved from
type QuoteSource string

const (
	QuoteSourceExact   QuoteSource = "exact"
	QuoteSourceDefault QuoteSource = "default"
	QuoteSourceNone    QuoteSource = "none"
)

// Quote is a resolved delivery price
type Quote struct {
	Region    string
	SubRegion string
	Price     int64
	ETA       string
	Source    QuoteSource
}

// Resolve returns the delivery price for region and optional subRegion.
// An exact (region, sub-region) row wins over the region default; when neither
// exists the price is zero so checkout is never blocked on a missing rate.
func Resolve(ctx context.Context, lookup RateLookup, region, subRegion string) (Quote, error) {
	region = strings.TrimSpace(region)
	subRegion = strings.TrimSpace(subRegion)
	q := Quote{Region: region, SubRegion: subRegion, Source: QuoteSourceNone}

	if subRegion != "" {
		rate, err := lookup.FindRate(ctx, region, &subRegion)
		if err == nil {
			q.Price, q.ETA, q.Source = rate.Price, rate.ETA, QuoteSourceExact
			return q, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return Quote{}, err
		}
	}

	rate, err := lookup.FindRate(ctx, region, nil)
	if err == nil {
		q.Price, q.ETA, q.Source = rate.Price, rate.ETA, QuoteSourceDefault
		return q, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Quote{}, err
	}
	return q, nil
}
