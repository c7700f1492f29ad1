package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Stock es la cantidad actual
// (entero >= 0) y solo se modifica vía el ledger de stock (ajustes atómicos);
// Price es el precio de venta vigente, las órdenes guardan snapshot al crearse.
type Product struct {
	ID                string
	SKU               string // código único
	Name              string
	Description       string
	Price             decimal.Decimal
	Stock             int64
	LowStockThreshold int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si el producto está en o bajo su umbral de reposición.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
