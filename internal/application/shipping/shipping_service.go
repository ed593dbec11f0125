package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
	"github.com/sadsod/storefront/internal/domain/shipping"
)

// ShippingService handles delivery pricing and the admin rate table
type ShippingService struct {
	rateRepo      shipping.RateRepository
	subRegionRepo shipping.SubRegionRepository
}

// NewShippingService creates a new ShippingService
func NewShippingService(rateRepo shipping.RateRepository, subRegionRepo shipping.SubRegionRepository) *ShippingService {
	return &ShippingService{
		rateRepo:      rateRepo,
		subRegionRepo: subRegionRepo,
	}
}

// Quote resolves the delivery price for a destination. A destination
// without any rate is quoted at zero.
func (s *ShippingService) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	q, err := shipping.Resolve(ctx, s.rateRepo, req.Region, req.SubRegion)
	if err != nil {
		return nil, err
	}
	resp := ToQuoteResponse(q)
	return &resp, nil
}

// Regions returns the static region list
func (s *ShippingService) Regions() ([]RegionResponse, error) {
	regions, err := shipping.Regions()
	if err != nil {
		return nil, err
	}
	out := make([]RegionResponse, len(regions))
	for i, r := range regions {
		out[i] = RegionResponse{Code: r.Code, Name: r.Name}
	}
	return out, nil
}

// SubRegions returns the sub-regions of a region sorted by name
func (s *ShippingService) SubRegions(ctx context.Context, region string) ([]SubRegionResponse, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return []SubRegionResponse{}, nil
	}
	subRegions, err := s.subRegionRepo.ListByRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	return toSubRegionResponses(subRegions), nil
}

// ListRates returns every rate ordered by region then sub-region
func (s *ShippingService) ListRates(ctx context.Context) ([]RateResponse, error) {
	rates, err := s.rateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RateResponse, len(rates))
	for i := range rates {
		out[i] = ToRateResponse(&rates[i])
	}
	return out, nil
}

// AddRate sets the price of a (region, sub-region) pair. An existing row for
// the pair is repriced instead of duplicated.
func (s *ShippingService) AddRate(ctx context.Context, form RateForm) (*RateResponse, error) {
	price, err := shared.ParseNonNegativeInt("price", form.Price)
	if err != nil {
		return nil, err
	}
	rate, err := shipping.NewRate(form.Region, shared.OptionalString(form.SubRegion), price, form.ETA)
	if err != nil {
		return nil, err
	}
	if err := checkRegion(rate.Region); err != nil {
		return nil, err
	}

	saved, err := s.upsertRate(ctx, rate)
	if errors.Is(err, shared.ErrAlreadyExists) {
		// Lost an insert race for the same pair; the row exists now
		saved, err = s.upsertRate(ctx, rate)
	}
	if err != nil {
		return nil, err
	}
	resp := ToRateResponse(saved)
	return &resp, nil
}

func (s *ShippingService) upsertRate(ctx context.Context, rate *shipping.Rate) (*shipping.Rate, error) {
	existing, err := s.rateRepo.FindRate(ctx, rate.Region, rate.SubRegion)
	switch {
	case err == nil:
		if err := existing.Reprice(rate.Price, rate.ETA); err != nil {
			return nil, err
		}
		rate = existing
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

// DeleteRate deletes a rate
func (s *ShippingService) DeleteRate(ctx context.Context, id uuid.UUID) error {
	return s.rateRepo.Delete(ctx, id)
}

// ListSubRegions returns every sub-region ordered by region then name
func (s *ShippingService) ListSubRegions(ctx context.Context) ([]SubRegionResponse, error) {
	subRegions, err := s.subRegionRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toSubRegionResponses(subRegions), nil
}

// AddSubRegion creates a sub-region; region and name are both required
func (s *ShippingService) AddSubRegion(ctx context.Context, form SubRegionForm) (*SubRegionResponse, error) {
	subRegion, err := shipping.NewSubRegion(form.Region, form.Name)
	if err != nil {
		return nil, err
	}
	if err := checkRegion(subRegion.Region); err != nil {
		return nil, err
	}

	if err := s.subRegionRepo.Save(ctx, subRegion); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS",
				fmt.Sprintf("Sub-region %s already exists in %s", subRegion.Name, subRegion.Region))
		}
		return nil, err
	}
	resp := ToSubRegionResponse(subRegion)
	return &resp, nil
}

// DeleteSubRegion deletes a sub-region. Rates that name it are left in place.
func (s *ShippingService) DeleteSubRegion(ctx context.Context, id uuid.UUID) error {
	return s.subRegionRepo.Delete(ctx, id)
}

func checkRegion(region string) error {
	if !shipping.IsKnownRegion(region) {
		return shared.NewDomainError("INVALID_REGION", fmt.Sprintf("Unknown region: %s", region))
	}
	return nil
}

func toSubRegionResponses(subRegions []shipping.SubRegion) []SubRegionResponse {
	out := make([]SubRegionResponse, len(subRegions))
	for i := range subRegions {
		out[i] = ToSubRegionResponse(&subRegions[i])
	}
	return out
}
