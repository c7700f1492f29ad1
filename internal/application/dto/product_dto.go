package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest datos para crear un producto.
type CreateProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int64           `json:"stock"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
}

// UpdateProductRequest datos editables de un producto. Stock no se incluye:
// solo cambia vía ajustes del ledger.
type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	LowStockThreshold *int64           `json:"low_stock_threshold"`
}

// AdjustStockRequest ajuste manual de stock (delta positivo o negativo).
type AdjustStockRequest struct {
	Delta int64 `json:"delta"`
}

// AdjustStockResponse stock resultante después del ajuste.
type AdjustStockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int64  `json:"stock"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int64           `json:"stock"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	LowStock          bool            `json:"low_stock"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
