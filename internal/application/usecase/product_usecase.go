package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// ProductUseCase CRUD de productos del catálogo más el ajuste manual de stock.
// Las ediciones nunca tocan Stock: ese campo solo cambia vía AdjustStock (ledger).
type ProductUseCase struct {
	productRepo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo}
}

// Create persiste un producto nuevo. SKU único (ErrDuplicate si ya existe);
// precio y stock inicial no negativos.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*entity.Product, error) {
	if in.SKU == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price.IsNegative() || in.Stock < 0 || in.LowStockThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               in.SKU,
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		Stock:             in.Stock,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto (ErrNotFound si no existe).
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// Update edita metadatos del producto (nombre, descripción, precio, umbral).
// El cambio de precio no altera órdenes históricas: estas guardan snapshot.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		product.LowStockThreshold = *in.LowStockThreshold
	}
	product.UpdatedAt = time.Now()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List lista productos; con lowStock=true solo los que están en o bajo su umbral.
func (uc *ProductUseCase) List(ctx context.Context, lowStock bool, limit, offset int) ([]*entity.Product, error) {
	if lowStock {
		return uc.productRepo.ListLowStock(ctx, limit, offset)
	}
	return uc.productRepo.List(ctx, limit, offset)
}

// Delete elimina un producto del catálogo. Las órdenes históricas no se
// invalidan: sus líneas guardan snapshots y referencia débil por ID.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.productRepo.Delete(ctx, id)
}

// AdjustStock aplica un ajuste manual al ledger (delta positivo o negativo) y
// devuelve el stock resultante. La verificación de suficiencia y la escritura
// son una sola operación atómica en el repositorio.
func (uc *ProductUseCase) AdjustStock(ctx context.Context, productID string, delta int64) (int64, error) {
	if delta == 0 {
		return 0, domain.ErrInvalidInput
	}
	return uc.productRepo.AdjustStock(ctx, productID, delta)
}
