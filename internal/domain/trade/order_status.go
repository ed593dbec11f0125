package trade

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

var orderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusNew:       "جديد",
	OrderStatusConfirmed: "مؤكد",
	OrderStatusPreparing: "قيد التحضير",
	OrderStatusShipped:   "تم الشحن",
	OrderStatusDelivered: "تم التسليم",
	OrderStatusCancelled: "ملغي",
	OrderStatusReturned:  "راجع",
}

// OrderStatuses returns the closed status vocabulary in workflow order
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

// IsValid checks if the status is part of the vocabulary
func (s OrderStatus) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Label returns the display label. Values stored before the vocabulary
// changed have no label and are shown as-is.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// IsTerminal reports whether the status ends the fulfilment workflow
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusReturned
}

// CanTransitionTo checks if the status can move to target.
// The workflow is open: any known status is reachable from any state.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return target.IsValid()
}
