package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de orden de compra. UnitPrice es opcional: si viene,
// es el precio pactado con el proveedor; si no, se usa el precio de catálogo.
type PurchaseItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest datos para crear una orden de compra.
type CreatePurchaseOrderRequest struct {
	Supplier             string                `json:"supplier"`
	Items                []PurchaseItemRequest `json:"items"`
	ExpectedDeliveryDate *time.Time            `json:"expected_delivery_date"`
	Notes                string                `json:"notes"`
}

// UpdatePurchaseOrderStatusRequest cambio de estado de una orden de compra.
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePurchaseOrderRequest campos editables mientras la orden no esté recibida.
type UpdatePurchaseOrderRequest struct {
	Supplier             *string    `json:"supplier"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date"`
	Notes                *string    `json:"notes"`
}

// PurchaseItemResponse línea de orden de compra persistida.
type PurchaseItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PurchaseOrderResponse representación HTTP de una orden de compra.
type PurchaseOrderResponse struct {
	ID                   string                 `json:"id"`
	PONumber             string                 `json:"po_number"`
	Supplier             string                 `json:"supplier"`
	Items                []PurchaseItemResponse `json:"items"`
	TotalAmount          decimal.Decimal        `json:"total_amount"`
	Status               string                 `json:"status"`
	CreatedBy            string                 `json:"created_by"`
	ExpectedDeliveryDate *time.Time             `json:"expected_delivery_date,omitempty"`
	ReceivedDate         *time.Time             `json:"received_date,omitempty"`
	Notes                string                 `json:"notes"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// PurchaseOrderListResponse listado paginado de órdenes de compra.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
