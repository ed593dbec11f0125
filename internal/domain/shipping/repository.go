package shipping

import (
	"context"

	"github.com/google/uuid"
)

// RateLookup finds the rate row for an exact (region, sub-region) pair.
// A nil subRegion selects the region default. Returns shared.ErrNotFound when absent.
type RateLookup interface {
	FindRate(ctx context.Context, region string, subRegion *string) (*Rate, error)
}

// RateRepository defines the interface for shipping rate persistence
type RateRepository interface {
	RateLookup
	FindByID(ctx context.Context, id uuid.UUID) (*Rate, error)
	// List returns all rates ordered by region then sub-region
	List(ctx context.Context) ([]Rate, error)
	Count(ctx context.Context) (int64, error)
	Save(ctx context.Context, rate *Rate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubRegionRepository defines the interface for sub-region persistence
type SubRegionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubRegion, error)
	// ListByRegion returns the sub-regions of a region ordered by name
	ListByRegion(ctx context.Context, region string) ([]SubRegion, error)
	// List returns all sub-regions ordered by region then name
	List(ctx context.Context) ([]SubRegion, error)
	Save(ctx context.Context, subRegion *SubRegion) error
	Delete(ctx context.Context, id uuid.UUID) error
}
