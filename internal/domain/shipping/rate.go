package shipping

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// Rate is the delivery price for a region, optionally narrowed to a sub-region.
// A nil SubRegion marks the region-level default.
type Rate struct {
	ID        uuid.UUID
	Region    string
	SubRegion *string
	Price     int64
	ETA       string
}

// NewRate creates a shipping rate
func NewRate(region string, subRegion *string, price int64, eta string) (*Rate, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return nil, shared.NewValidationError("region")
	}
	if price < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Delivery price cannot be negative")
	}
	return &Rate{
		ID:        uuid.New(),
		Region:    region,
		SubRegion: shared.OptionalString(deref(subRegion)),
		Price:     price,
		ETA:       strings.TrimSpace(eta),
	}, nil
}

// IsDefault reports whether the rate is the region-level default
func (r *Rate) IsDefault() bool {
	return r.SubRegion == nil
}

// Reprice changes the price and ETA of an existing rate
func (r *Rate) Reprice(price int64, eta string) error {
	if price < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Delivery price cannot be negative")
	}
	r.Price = price
	r.ETA = strings.TrimSpace(eta)
	return nil
}

// SubRegion is a named delivery zone inside a region (a daira of a wilaya)
type SubRegion struct {
	ID     uuid.UUID
	Region string
	Name   string
}

// NewSubRegion creates a sub-region; both region and name are required
func NewSubRegion(region, name string) (*SubRegion, error) {
	region = strings.TrimSpace(region)
	name = strings.TrimSpace(name)

	missing := make([]string, 0, 2)
	if region == "" {
		missing = append(missing, "region")
	}
	if name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return nil, shared.NewValidationError(missing...)
	}
	return &SubRegion{ID: uuid.New(), Region: region, Name: name}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
