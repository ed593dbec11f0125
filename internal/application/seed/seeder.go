// Package seed fills an empty store with the admin account, demo products
// and a default delivery rate for every region.
package seed

import (
	"context"
	"fmt"

	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shipping"
	"go.uber.org/zap"
)

const demoDescription = "منتج مصنوع بعناية يعكس الأناقة واللمسة الجزائرية التقليدية."

// AdminProvisioner creates the first admin account
type AdminProvisioner interface {
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

// Config holds the seed values
type Config struct {
	AdminUsername        string
	AdminPassword        string
	DefaultShippingPrice int64
	DefaultShippingETA   string
}

// Seeder populates empty tables. Tables that already hold rows are left untouched.
type Seeder struct {
	admins   AdminProvisioner
	products catalog.ProductRepository
	rates    shipping.RateRepository
	cfg      Config
	logger   *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(admins AdminProvisioner, products catalog.ProductRepository, rates shipping.RateRepository, cfg Config, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		admins:   admins,
		products: products,
		rates:    rates,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run seeds every empty table
func (s *Seeder) Run(ctx context.Context) error {
	created, err := s.admins.EnsureAdmin(ctx, s.cfg.AdminUsername, s.cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	if created {
		s.logger.Info("Seeded admin account", zap.String("username", s.cfg.AdminUsername))
	}

	if err := s.seedProducts(ctx); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := s.seedRates(ctx); err != nil {
		return fmt.Errorf("failed to seed shipping rates: %w", err)
	}
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context) error {
	count, err := s.products.Count(ctx, catalog.ProductFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, attrs := range DemoProducts() {
		product, err := catalog.NewProduct(attrs)
		if err != nil {
			return err
		}
		if err := s.products.Save(ctx, product); err != nil {
			return err
		}
	}
	s.logger.Info("Seeded demo products", zap.Int("count", len(DemoProducts())))
	return nil
}

func (s *Seeder) seedRates(ctx context.Context) error {
	count, err := s.rates.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	names, err := shipping.RegionNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		rate, err := shipping.NewRate(name, nil, s.cfg.DefaultShippingPrice, s.cfg.DefaultShippingETA)
		if err != nil {
			return err
		}
		if err := s.rates.Save(ctx, rate); err != nil {
			return err
		}
	}
	s.logger.Info("Seeded default shipping rates",
		zap.Int("regions", len(names)),
		zap.Int64("price", s.cfg.DefaultShippingPrice),
	)
	return nil
}

// DemoProducts returns the demo catalog
func DemoProducts() []catalog.ProductAttributes {
	return []catalog.ProductAttributes{
		{Name: "حذاء نسائي جلد طبيعي - Sadsod 01", Slug: "sadsod-01", Category: "نسائي", Price: 4800, OldPrice: price(5600), Stock: 12, Featured: true, Description: demoDescription},
		{Name: "حذاء نسائي بكعب أنيق - Sadsod 02", Slug: "sadsod-02", Category: "نسائي", Price: 5200, Stock: 8, Featured: true, Description: demoDescription},
		{Name: "بابوش تقليدي جلد - Sadsod 03", Slug: "sadsod-03", Category: "تقليدي", Price: 3900, OldPrice: price(4500), Stock: 20, Description: demoDescription},
		{Name: "حذاء رجالي جلد - Sadsod 04", Slug: "sadsod-04", Category: "رجالي", Price: 6100, OldPrice: price(6900), Stock: 6, Featured: true, Description: demoDescription},
	}
}

func price(v int64) *int64 {
	return &v
}
