package models

import (
	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/trade"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	BaseModel
	OrderNumber   string            `gorm:"type:varchar(40);not null;uniqueIndex:idx_orders_number"`
	CustomerName  string            `gorm:"type:varchar(200);not null"`
	Phone         string            `gorm:"type:varchar(40);not null;index"`
	Region        string            `gorm:"type:varchar(100);not null;index"`
	SubRegion     *string           `gorm:"type:varchar(100)"`
	Address       string            `gorm:"type:text;not null"`
	Notes         *string           `gorm:"type:text"`
	DeliveryPrice int64             `gorm:"not null;default:0"`
	Total         int64             `gorm:"not null;default:0"`
	Status        trade.OrderStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	Items         []OrderItemModel  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
// Items are only populated when they were preloaded.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderNumber:   m.OrderNumber,
		CustomerName:  m.CustomerName,
		Phone:         m.Phone,
		Region:        m.Region,
		SubRegion:     m.SubRegion,
		Address:       m.Address,
		Notes:         m.Notes,
		DeliveryPrice: m.DeliveryPrice,
		Total:         m.Total,
		Status:        m.Status,
	}
	if len(m.Items) > 0 {
		o.Items = make([]trade.OrderItem, len(m.Items))
		for i := range m.Items {
			o.Items[i] = m.Items[i].ToDomain()
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Order, items included.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.OrderNumber = o.OrderNumber
	m.CustomerName = o.CustomerName
	m.Phone = o.Phone
	m.Region = o.Region
	m.SubRegion = o.SubRegion
	m.Address = o.Address
	m.Notes = o.Notes
	m.DeliveryPrice = o.DeliveryPrice
	m.Total = o.Total
	m.Status = o.Status
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(o.Items[i])
	}
}

// OrderItemModel is the persistence model for an order line.
// product_id has no foreign key: lines outlive the products they snapshot.
type OrderItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductName string    `gorm:"type:varchar(140);not null"`
	Quantity    int64     `gorm:"not null"`
	UnitPrice   int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain OrderItem.
func (m *OrderItemModel) FromDomain(i trade.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
}

// OrderSequenceModel holds the last order number issued for a key (prefix and day).
type OrderSequenceModel struct {
	SeqKey string `gorm:"column:seq_key;type:varchar(40);primary_key"`
	Value  int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}
