package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderServed, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// Closed marca los estados que liberan la mesa asociada
func (s OrderStatus) Closed() bool {
	return s == OrderPaid || s == OrderCancelled
}

type OrderType string

const (
	OrderDineIn   OrderType = "dine-in"
	OrderTakeaway OrderType = "takeaway"
	OrderDelivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderDineIn, OrderTakeaway, OrderDelivery:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

type Order struct {
	ID          uint   `gorm:"primaryKey"`
	OrderNumber string `gorm:"size:50;not null;uniqueIndex"`
	TakenByID   uint   `gorm:"index;not null"`
	TakenBy     User
	Status      OrderStatus `gorm:"size:15;not null;default:pending"`
	TableID     *uint       `gorm:"index"` // opcional para takeaway/delivery
	Table       *Table
	OrderType   OrderType `gorm:"size:10;not null;default:dine-in"`

	// Datos del cliente (requeridos según el tipo de orden)
	CustomerName    string `gorm:"size:100"`
	CustomerPhone   string `gorm:"size:50"`
	CustomerAddress string `gorm:"size:255"`

	PaymentMethod PaymentMethod `gorm:"size:10"` // nulo hasta completar el pago
	TotalAmount   float64       `gorm:"not null"`
	Paid          bool          `gorm:"not null;default:false"`
	PaidAt        *time.Time

	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ID           uint `gorm:"primaryKey"`
	OrderID      uint `gorm:"index;not null"`
	ProductID    uint `gorm:"index;not null"`
	Product      Product
	Quantity     int     `gorm:"not null"`
	PriceAtOrder float64 `gorm:"not null"` // precio del producto al momento de la orden
	Notes        string  `gorm:"size:255"`
}
