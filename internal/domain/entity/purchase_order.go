package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado del ciclo de vida de una orden de compra a proveedor.
type PurchaseOrderStatus string

// Estados válidos de PurchaseOrder.
const (
	POStatusPending   PurchaseOrderStatus = "pending"
	POStatusApproved  PurchaseOrderStatus = "approved"
	POStatusReceived  PurchaseOrderStatus = "received"
	POStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid indica si el valor es un estado conocido de PurchaseOrder.
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case POStatusPending, POStatusApproved, POStatusReceived, POStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo valida la transición: pending → approved → received;
// cancelled desde pending o approved. received y cancelled son terminales,
// con la excepción received → received: reenviar "received" se acepta como
// no-op (el crédito de stock queda protegido por ReceivedDate, ver UpdateStatus).
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case POStatusPending:
		return target == POStatusApproved || target == POStatusCancelled
	case POStatusApproved:
		return target == POStatusReceived || target == POStatusCancelled
	case POStatusReceived:
		return target == POStatusReceived
	}
	return false
}

// PurchaseOrderItem línea de una orden de compra. ProductName es snapshot;
// UnitPrice puede ser un precio pactado con el proveedor (override) o el
// precio de catálogo vigente al crear la orden.
type PurchaseOrderItem struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
}

// PurchaseOrder representa una orden de compra a un proveedor.
// ReceivedDate se fija exactamente una vez, en la primera transición a
// received, y actúa como token de idempotencia del crédito de stock.
type PurchaseOrder struct {
	ID                   string
	PONumber             string // único, formato PO-<timestamp>-<suffix>
	Supplier             string
	Items                []PurchaseOrderItem
	TotalAmount          decimal.Decimal
	Status               PurchaseOrderStatus
	CreatedBy            string
	ExpectedDeliveryDate *time.Time
	ReceivedDate         *time.Time
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsReceived indica si la orden ya aplicó su entrada de stock.
func (po *PurchaseOrder) IsReceived() bool {
	return po.ReceivedDate != nil
}
