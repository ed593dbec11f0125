package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/trade"
)

// CheckoutRequest is the customer form submitted at checkout
type CheckoutRequest struct {
	Name      string `json:"name" form:"name" binding:"max=120"`
	Phone     string `json:"phone" form:"phone" binding:"max=40"`
	Region    string `json:"region" form:"region" binding:"max=100"`
	SubRegion string `json:"sub_region" form:"sub_region" binding:"max=100"`
	Address   string `json:"address" form:"address" binding:"max=300"`
	Notes     string `json:"notes" form:"notes" binding:"max=1000"`
}

// Input converts the request into checkout input
func (r CheckoutRequest) Input() trade.CheckoutInput {
	return trade.CheckoutInput{
		Name:      r.Name,
		Phone:     r.Phone,
		Region:    r.Region,
		SubRegion: r.SubRegion,
		Address:   r.Address,
		Notes:     r.Notes,
	}
}

// TrackOrderRequest looks up an order by number and phone
type TrackOrderRequest struct {
	OrderNumber string `json:"order_number" form:"order_number" binding:"max=40"`
	Phone       string `json:"phone" form:"phone" binding:"max=40"`
}

// OrderListQuery is an admin order listing request
type OrderListQuery struct {
	Status   string `form:"status" binding:"max=20"`
	Region   string `form:"region" binding:"max=100"`
	Query    string `form:"q" binding:"max=60"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy   string `form:"sort_by"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// UpdateStatusRequest moves an order to another status
type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" binding:"required"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	LineTotal   int64     `json:"line_total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerName  string              `json:"customer_name"`
	Phone         string              `json:"phone"`
	Region        string              `json:"region"`
	SubRegion     *string             `json:"sub_region,omitempty"`
	Address       string              `json:"address"`
	Notes         *string             `json:"notes,omitempty"`
	Subtotal      int64               `json:"subtotal"`
	DeliveryPrice int64               `json:"delivery_price"`
	Total         int64               `json:"total"`
	Status        string              `json:"status"`
	StatusLabel   string              `json:"status_label"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListItemResponse is an order row in listings, without items
type OrderListItemResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	Region        string    `json:"region"`
	DeliveryPrice int64     `json:"delivery_price"`
	Total         int64     `json:"total"`
	Status        string    `json:"status"`
	StatusLabel   string    `json:"status_label"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusResponse is an entry of the status vocabulary
type StatusResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DashboardResponse is the admin dashboard summary
type DashboardResponse struct {
	OrdersToday       int64                   `json:"orders_today"`
	RevenueToday      int64                   `json:"revenue_today"`
	AverageOrderToday string                  `json:"average_order_today"`
	TotalOrders       int64                   `json:"total_orders"`
	TotalProducts     int64                   `json:"total_products"`
	RecentOrders      []OrderListItemResponse `json:"recent_orders"`
	Statuses          []StatusResponse        `json:"statuses"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		}
	}
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Region:        o.Region,
		SubRegion:     o.SubRegion,
		Address:       o.Address,
		Notes:         o.Notes,
		Subtotal:      o.Total - o.DeliveryPrice,
		DeliveryPrice: o.DeliveryPrice,
		Total:         o.Total,
		Status:        string(o.Status),
		StatusLabel:   o.Status.Label(),
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderListItemResponse converts a domain Order to a listing row
func ToOrderListItemResponse(o *trade.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Region:        o.Region,
		DeliveryPrice: o.DeliveryPrice,
		Total:         o.Total,
		Status:        string(o.Status),
		StatusLabel:   o.Status.Label(),
		CreatedAt:     o.CreatedAt,
	}
}

// ToOrderListItemResponses converts a slice of orders
func ToOrderListItemResponses(orders []trade.Order) []OrderListItemResponse {
	out := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderListItemResponse(&orders[i])
	}
	return out
}

// StatusVocabulary returns every known status with its display label
func StatusVocabulary() []StatusResponse {
	statuses := trade.OrderStatuses()
	out := make([]StatusResponse, len(statuses))
	for i, s := range statuses {
		out[i] = StatusResponse{Value: string(s), Label: s.Label()}
	}
	return out
}
