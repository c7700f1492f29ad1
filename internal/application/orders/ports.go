package orders

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que los débitos/créditos de stock y
// la escritura de la orden se apliquen todo-o-nada: si fn retorna error se
// hace Rollback y ningún ajuste parcial queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// RefGenerator produce números externos de orden (ORD-<timestamp>-<sufijo>).
// La unicidad la garantiza el índice único en BD más reintento ante ErrDuplicate.
type RefGenerator interface {
	Next(prefix string) string
}
