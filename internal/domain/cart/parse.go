package cart

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// ErrInvalidProductID is wrapped by a ParseError for a malformed product key
var ErrInvalidProductID = errors.New("invalid product id")

// ParseQuantities converts a submitted product-id to quantity form into
// typed values. Non-positive quantities are kept so Replace can drop them;
// malformed ids, malformed quantities and quantities above MaxLineQuantity
// fail with a *shared.ParseError.
func ParseQuantities(raw map[string]string) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(raw))
	for key, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(key))
		if err != nil {
			return nil, &shared.ParseError{Field: "product_id", Value: key, Err: ErrInvalidProductID}
		}
		qty, err := shared.ParseInt("quantity["+id.String()+"]", value)
		if err != nil {
			return nil, err
		}
		if qty > MaxLineQuantity {
			return nil, &shared.ParseError{Field: "quantity[" + id.String() + "]", Value: value, Err: ErrQuantityTooLarge}
		}
		out[id] = qty
	}
	return out, nil
}
