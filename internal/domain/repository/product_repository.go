package repository

import (
	"context"

	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// AdjustStock es el primitivo del ledger: suma delta (positivo = entrada,
// negativo = salida) de forma atómica y condicionada a que el stock resultante
// sea >= 0; devuelve el stock nuevo, ErrInsufficientStock si el débito dejaría
// stock negativo o ErrNotFound si el producto no existe. Ninguna otra
// operación del puerto modifica Stock.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	ListLowStock(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, productID string, delta int64) (int64, error)
}
