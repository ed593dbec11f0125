// Package loadgen drives synthetic shopper traffic against a running storefront.
package loadgen

import (
	"fmt"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sadsod/storefront/internal/domain/shipping"
)

// Customer is the checkout form of one synthetic shopper
type Customer struct {
	Name    string
	Phone   string
	Region  string
	Address string
	Notes   string
}

// Plan is what one shopper journey buys and who checks out
type Plan struct {
	Customer Customer
	// Pick selects a product from the listing, modulo its length
	Pick     int
	Quantity int64
}

var deliveryNotes = []string{
	"",
	"",
	"Call before delivery",
	"اتصل قبل التوصيل",
	"Appeler après 17h",
	"Size 41 if 40 is missing",
}

// PlanGenerator produces random shopper plans. Safe for concurrent use.
type PlanGenerator struct {
	mu      sync.Mutex
	faker   *gofakeit.Faker
	regions []string
	maxQty  int
}

// NewPlanGenerator creates a generator; a zero seed picks a random one
func NewPlanGenerator(seed uint64, maxQuantity int) (*PlanGenerator, error) {
	regions, err := shipping.RegionNames()
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("region dataset is empty")
	}
	if maxQuantity <= 0 {
		maxQuantity = 3
	}
	return &PlanGenerator{
		faker:   gofakeit.New(seed),
		regions: regions,
		maxQty:  maxQuantity,
	}, nil
}

// Next returns a new plan
func (g *PlanGenerator) Next() Plan {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.faker
	return Plan{
		Customer: Customer{
			Name:    f.Name(),
			Phone:   "0" + f.RandomString([]string{"5", "6", "7"}) + f.Numerify("## ## ## ##"),
			Region:  g.regions[f.Number(0, len(g.regions)-1)],
			Address: f.Street() + ", " + f.City(),
			Notes:   f.RandomString(deliveryNotes),
		},
		Pick:     f.Number(0, 1<<16),
		Quantity: int64(f.Number(1, g.maxQty)),
	}
}
