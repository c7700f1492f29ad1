package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para Order.
// Create persiste la orden con sus líneas; las líneas no se editan después.
// GetByIDForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para
// serializar cancelaciones y cambios de estado concurrentes; usar solo
// dentro de una transacción (TxRunner).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Order, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Order, error)
}
