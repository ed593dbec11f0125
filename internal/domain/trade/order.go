package trade

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// OrderItem is an order line. Name and unit price are copied from the
// product at checkout so later catalog edits do not change past orders.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	UnitPrice   int64
}

// LineTotal returns quantity * unit price
func (i OrderItem) LineTotal() int64 {
	return i.Quantity * i.UnitPrice
}

// ErrAmountOverflow is returned when a line would push the order total
// past what an int64 can hold
var ErrAmountOverflow = shared.NewDomainError("INVALID_QUANTITY", "Order amount is too large")

// Order is a placed customer order
type Order struct {
	shared.BaseEntity
	OrderNumber   string
	CustomerName  string
	Phone         string
	Region        string
	SubRegion     *string
	Address       string
	Notes         *string
	DeliveryPrice int64
	Total         int64
	Status        OrderStatus
	Items         []OrderItem
}

// NewOrder creates an order in the new state from validated checkout input
func NewOrder(orderNumber string, input CheckoutInput, deliveryPrice int64) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if deliveryPrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Delivery price cannot be negative")
	}

	in := input.Normalize()
	o := &Order{
		BaseEntity:    shared.NewBaseEntity(),
		OrderNumber:   orderNumber,
		CustomerName:  in.Name,
		Phone:         in.Phone,
		Region:        in.Region,
		SubRegion:     shared.OptionalString(in.SubRegion),
		Address:       in.Address,
		Notes:         shared.OptionalString(in.Notes),
		DeliveryPrice: deliveryPrice,
		Status:        OrderStatusNew,
	}
	o.recalculateTotal()
	return o, nil
}

// AddItem appends a line snapshotting the product's name and price
func (o *Order) AddItem(productID uuid.UUID, productName string, quantity, unitPrice int64) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice < 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	if unitPrice > 0 && quantity > math.MaxInt64/unitPrice {
		return nil, ErrAmountOverflow
	}
	if quantity*unitPrice > math.MaxInt64-o.Total {
		return nil, ErrAmountOverflow
	}

	item := OrderItem{
		ID:          uuid.New(),
		OrderID:     o.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
	o.Items = append(o.Items, item)
	o.recalculateTotal()
	return &o.Items[len(o.Items)-1], nil
}

// Subtotal returns the sum of line totals
func (o *Order) Subtotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.LineTotal()
	}
	return sum
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int64 {
	var n int64
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// SetStatus moves the order to target and returns the previous status.
// Only membership in the status vocabulary is checked.
func (o *Order) SetStatus(target OrderStatus) (OrderStatus, error) {
	if !o.Status.CanTransitionTo(target) {
		return o.Status, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status: %s", target))
	}
	prev := o.Status
	o.Status = target
	o.Touch()
	return prev, nil
}

func (o *Order) recalculateTotal() {
	o.Total = o.Subtotal() + o.DeliveryPrice
}
