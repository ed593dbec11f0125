package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/sadsod/storefront/internal/domain/shared"
)

// DefaultCategory is assigned when a product is created without a category
const DefaultCategory = "نسائي"

// MaxPrice bounds product prices so cart and order arithmetic stays in int64
const MaxPrice int64 = 1_000_000_000

// Product represents an item of footwear offered in the storefront.
// Prices are integers in the smallest currency unit.
type Product struct {
	shared.BaseEntity
	Name        string
	Slug        string
	Category    string
	Price       int64
	OldPrice    *int64
	Stock       int64
	Description string
	Image       string
	Featured    bool
}

// ProductAttributes holds the mutable fields of a product
type ProductAttributes struct {
	Name        string
	Slug        string
	Category    string
	Price       int64
	OldPrice    *int64
	Stock       int64
	Description string
	Image       string
	Featured    bool
}

// NewProduct creates a new product from the given attributes.
// A blank slug is derived from the name.
func NewProduct(attrs ProductAttributes) (*Product, error) {
	p := &Product{BaseEntity: shared.NewBaseEntity()}
	if err := p.apply(attrs); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the product's attributes
func (p *Product) Update(attrs ProductAttributes) error {
	if err := p.apply(attrs); err != nil {
		return err
	}
	p.Touch()
	return nil
}

func (p *Product) apply(attrs ProductAttributes) error {
	name := strings.TrimSpace(attrs.Name)
	slug := strings.TrimSpace(attrs.Slug)
	if slug == "" {
		slug = Slugify(name)
	} else {
		slug = Slugify(slug)
	}

	missing := make([]string, 0, 2)
	if name == "" {
		missing = append(missing, "name")
	}
	if slug == "" {
		missing = append(missing, "slug")
	}
	if len(missing) > 0 {
		return shared.NewValidationError(missing...)
	}
	if err := validateName(name); err != nil {
		return err
	}
	if attrs.Price < 0 {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if attrs.Price > MaxPrice {
		return shared.NewDomainError("INVALID_PRICE", "Price is above the allowed maximum")
	}
	if attrs.OldPrice != nil && (*attrs.OldPrice < 0 || *attrs.OldPrice > MaxPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Old price must be between 0 and the allowed maximum")
	}
	if attrs.Stock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}

	category := strings.TrimSpace(attrs.Category)
	if category == "" {
		category = DefaultCategory
	}

	p.Name = name
	p.Slug = slug
	p.Category = category
	p.Price = attrs.Price
	p.OldPrice = attrs.OldPrice
	p.Stock = attrs.Stock
	p.Description = strings.TrimSpace(attrs.Description)
	p.Image = strings.TrimSpace(attrs.Image)
	p.Featured = attrs.Featured
	return nil
}

// OnSale reports whether the product shows a discounted old price
func (p *Product) OnSale() bool {
	return p.OldPrice != nil && *p.OldPrice > p.Price
}

// InStock reports whether at least one unit is available
func (p *Product) InStock() bool {
	return p.Stock > 0
}

func validateName(name string) error {
	if utf8.RuneCountInString(name) > 140 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 140 characters")
	}
	return nil
}
