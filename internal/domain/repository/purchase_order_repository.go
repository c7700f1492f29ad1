package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para PurchaseOrder.
// MarkReceived fija received_date y status=received en una sola escritura:
// received_date es el token de idempotencia del crédito de stock, por eso
// nunca se escribe por separado del cambio de estado.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus, updatedAt time.Time) error
	MarkReceived(ctx context.Context, id string, receivedAt time.Time) error
	Update(ctx context.Context, po *entity.PurchaseOrder) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error)
}
