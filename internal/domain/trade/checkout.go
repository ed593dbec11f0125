package trade

import (
	"strings"

	"github.com/sadsod/storefront/internal/domain/shared"
)

// ErrEmptyCart is returned when checkout finds no purchasable line in the cart
var ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "The cart is empty")

// CheckoutInput is the customer data submitted with an order
type CheckoutInput struct {
	Name      string
	Phone     string
	Region    string
	SubRegion string
	Address   string
	Notes     string
}

// Normalize returns a copy with surrounding whitespace removed
func (in CheckoutInput) Normalize() CheckoutInput {
	return CheckoutInput{
		Name:      strings.TrimSpace(in.Name),
		Phone:     strings.TrimSpace(in.Phone),
		Region:    strings.TrimSpace(in.Region),
		SubRegion: strings.TrimSpace(in.SubRegion),
		Address:   strings.TrimSpace(in.Address),
		Notes:     strings.TrimSpace(in.Notes),
	}
}

// Validate checks that name, phone, region and address are not blank
func (in CheckoutInput) Validate() error {
	n := in.Normalize()
	var missing []string
	if n.Name == "" {
		missing = append(missing, "name")
	}
	if n.Phone == "" {
		missing = append(missing, "phone")
	}
	if n.Region == "" {
		missing = append(missing, "region")
	}
	if n.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return shared.NewValidationError(missing...)
	}
	return nil
}
