package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// OrderModel is the persistence model for the Order aggregate
type OrderModel struct {
	AggregateModel
	OrderNumber   string               `gorm:"type:varchar(16);not null;uniqueIndex:idx_orders_order_number"`
	UserID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerName  string               `gorm:"type:varchar(200);not null"`
	CustomerEmail string               `gorm:"type:varchar(255);not null;default:''"`
	CustomerPhone string               `gorm:"type:varchar(50);not null;default:''"`
	City          string               `gorm:"type:varchar(100);not null;default:''"`
	PostalCode    string               `gorm:"type:varchar(20);not null;default:''"`
	StreetAddress string               `gorm:"type:varchar(255);not null;default:''"`
	Status        string               `gorm:"type:varchar(20);not null;index"`
	PaymentMethod string               `gorm:"type:varchar(30);not null"`
	IsPaid        bool                 `gorm:"not null;default:false"`
	PaidAt        *time.Time           `gorm:"default:null"`
	Subtotal      decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	ShippingCost  decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	TaxAmount     decimal.Decimal      `gorm:"type:numeric(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal      `gorm:"type:numeric(12,2);not null"`
	Items         []OrderItemModel     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History       []StatusHistoryModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Items are included when loaded.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Customer: order.CustomerInfo{
			Name:  m.CustomerName,
			Email: m.CustomerEmail,
			Phone: m.CustomerPhone,
		},
		Shipping: order.ShippingAddress{
			City:          m.City,
			PostalCode:    m.PostalCode,
			StreetAddress: m.StreetAddress,
		},
		Status:        order.Status(m.Status),
		PaymentMethod: order.PaymentMethod(m.PaymentMethod),
		IsPaid:        m.IsPaid,
		Subtotal:      money(m.Subtotal),
		ShippingCost:  money(m.ShippingCost),
		TaxAmount:     money(m.TaxAmount),
		TotalPrice:    money(m.TotalPrice),
	}
	if m.PaidAt != nil {
		paidAt := m.PaidAt.UTC()
		o.PaidAt = &paidAt
	}
	if len(m.Items) > 0 {
		o.Items = make([]order.Item, len(m.Items))
		for i := range m.Items {
			o.Items[i] = m.Items[i].ToDomain()
		}
	}
	return o
}

// FromDomain populates the persistence model from a domain Order, items included
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.UserID = o.UserID
	m.CustomerName = o.Customer.Name
	m.CustomerEmail = o.Customer.Email
	m.CustomerPhone = o.Customer.Phone
	m.City = o.Shipping.City
	m.PostalCode = o.Shipping.PostalCode
	m.StreetAddress = o.Shipping.StreetAddress
	m.Status = o.Status.String()
	m.PaymentMethod = o.PaymentMethod.String()
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.Subtotal = o.Subtotal.Amount()
	m.ShippingCost = o.ShippingCost.Amount()
	m.TaxAmount = o.TaxAmount.Amount()
	m.TotalPrice = o.TotalPrice.Amount()
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line snapshot
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Product     *ProductModel   `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	ProductName string          `gorm:"type:varchar(255);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity    int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0"`
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		UnitPrice:   money(m.UnitPrice),
		Quantity:    m.Quantity,
		Subtotal:    money(m.Subtotal),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item
func OrderItemModelFromDomain(it order.Item) OrderItemModel {
	return OrderItemModel{
		ID:          it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		UnitPrice:   it.UnitPrice.Amount(),
		Quantity:    it.Quantity,
		Subtotal:    it.Subtotal.Amount(),
		CreatedAt:   it.CreatedAt,
	}
}

// StatusHistoryModel is the persistence model for one status history entry
type StatusHistoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_status_history_sequence,priority:1"`
	OldStatus *string   `gorm:"type:varchar(20)"`
	NewStatus string    `gorm:"type:varchar(20);not null"`
	Actor     string    `gorm:"type:varchar(100);not null"`
	Sequence  int       `gorm:"not null;uniqueIndex:idx_order_status_history_sequence,priority:2"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistory
func (m *StatusHistoryModel) ToDomain() order.StatusHistory {
	h := order.StatusHistory{
		ID:        m.ID,
		OrderID:   m.OrderID,
		NewStatus: order.Status(m.NewStatus),
		Actor:     m.Actor,
		Sequence:  m.Sequence,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.OldStatus != nil {
		old := order.Status(*m.OldStatus)
		h.OldStatus = &old
	}
	return h
}

// StatusHistoryModelFromDomain creates a persistence model from a domain StatusHistory
func StatusHistoryModelFromDomain(h *order.StatusHistory) *StatusHistoryModel {
	m := &StatusHistoryModel{
		ID:        h.ID,
		OrderID:   h.OrderID,
		NewStatus: h.NewStatus.String(),
		Actor:     h.Actor,
		Sequence:  h.Sequence,
		CreatedAt: h.CreatedAt,
	}
	if h.OldStatus != nil {
		old := h.OldStatus.String()
		m.OldStatus = &old
	}
	return m
}

// money converts a stored numeric to Money at the money scale
func money(d decimal.Decimal) valueobject.Money {
	return valueobject.NewMoney(d).Round()
}
