package shipping

import (
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shipping"
)

// QuoteRequest asks for the delivery price of a destination
type QuoteRequest struct {
	Region    string `form:"region" json:"region" binding:"max=100"`
	SubRegion string `form:"sub_region" json:"sub_region" binding:"max=100"`
}

// QuoteResponse is a resolved delivery price
type QuoteResponse struct {
	Region    string `json:"region"`
	SubRegion string `json:"sub_region,omitempty"`
	Price     int64  `json:"price"`
	ETA       string `json:"eta,omitempty"`
	Source    string `json:"source"`
}

// RateForm is the admin form for a shipping rate. A blank sub-region sets
// the region default; price arrives as a string and is parsed strictly.
type RateForm struct {
	Region    string `json:"region" form:"region" binding:"max=100"`
	SubRegion string `json:"sub_region" form:"sub_region" binding:"max=100"`
	Price     string `json:"price" form:"price"`
	ETA       string `json:"eta" form:"eta" binding:"max=60"`
}

// SubRegionForm is the admin form for a sub-region
type SubRegionForm struct {
	Region string `json:"region" form:"region" binding:"max=100"`
	Name   string `json:"name" form:"name" binding:"max=100"`
}

// RegionResponse is an entry of the static region list
type RegionResponse struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// RateResponse represents a shipping rate in API responses
type RateResponse struct {
	ID        uuid.UUID `json:"id"`
	Region    string    `json:"region"`
	SubRegion *string   `json:"sub_region"`
	IsDefault bool      `json:"is_default"`
	Price     int64     `json:"price"`
	ETA       string    `json:"eta"`
}

// SubRegionResponse represents a sub-region in API responses
type SubRegionResponse struct {
	ID     uuid.UUID `json:"id"`
	Region string    `json:"region"`
	Name   string    `json:"name"`
}

// ToQuoteResponse converts a resolved quote
func ToQuoteResponse(q shipping.Quote) QuoteResponse {
	return QuoteResponse{
		Region:    q.Region,
		SubRegion: q.SubRegion,
		Price:     q.Price,
		ETA:       q.ETA,
		Source:    string(q.Source),
	}
}

// ToRateResponse converts a domain Rate
func ToRateResponse(r *shipping.Rate) RateResponse {
	return RateResponse{
		ID:        r.ID,
		Region:    r.Region,
		SubRegion: r.SubRegion,
		IsDefault: r.IsDefault(),
		Price:     r.Price,
		ETA:       r.ETA,
	}
}

// ToSubRegionResponse converts a domain SubRegion
func ToSubRegionResponse(s *shipping.SubRegion) SubRegionResponse {
	return SubRegionResponse{ID: s.ID, Region: s.Region, Name: s.Name}
}
