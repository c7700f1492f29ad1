package purchasing

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con repositorios
// atados a esa tx. La recepción de una orden de compra (crédito de stock +
// received_date) debe ser atómica: o se aplican todos los créditos y el
// marcado, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
	) error) error
}

// RefGenerator produce números externos de orden de compra (PO-<timestamp>-<sufijo>).
type RefGenerator interface {
	Next(prefix string) string
}
