package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado del ciclo de vida de una orden de venta.
type OrderStatus string

// Estados válidos de Order.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid indica si el valor es un estado conocido de Order.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo valida la transición contra la tabla de estados:
// pending → processing → shipped → delivered; cancelled solo desde
// pending o processing. delivered y cancelled son terminales.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	}
	return false
}

// CanCancel indica si la orden admite cancelación (y por tanto reposición de stock).
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// OrderItem línea de una orden de venta. ProductName y Price son snapshots
// tomados al crear la orden: ediciones posteriores del catálogo no alteran
// órdenes históricas. ProductID es referencia débil (no FK con borrado en cascada).
type OrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int64
	Price       decimal.Decimal
}

// Order representa una orden de venta de un cliente.
// TotalAmount se calcula al crear (Σ cantidad × precio snapshot) y es inmutable;
// Items es inmutable después de la creación.
type Order struct {
	ID              string
	OrderNumber     string // único, formato ORD-<timestamp>-<suffix>
	UserID          string
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	ShippingAddress string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
