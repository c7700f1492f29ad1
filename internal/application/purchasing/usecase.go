package purchasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/pricing"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
	"github.com/jhoicas/pedidos-api/pkg/refgen"
)

// Intentos de generación de número de PO ante colisión del índice único.
const maxNumberAttempts = 3

// PurchaseOrderUseCase ciclo de vida de órdenes de compra: creación,
// transiciones de estado y la recepción idempotente que acredita stock
// exactamente una vez por orden.
type PurchaseOrderUseCase struct {
	txRunner    TxRunner
	poRepo      repository.PurchaseOrderRepository
	productRepo repository.ProductRepository
	refs        RefGenerator
	clock       func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso. poRepo y productRepo son
// repositorios atados al pool, para lecturas fuera de transacción.
func NewPurchaseOrderUseCase(
	txRunner TxRunner,
	poRepo repository.PurchaseOrderRepository,
	productRepo repository.ProductRepository,
	refs RefGenerator,
) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner:    txRunner,
		poRepo:      poRepo,
		productRepo: productRepo,
		refs:        refs,
		clock:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests deterministas).
func (uc *PurchaseOrderUseCase) WithClock(clock func() time.Time) *PurchaseOrderUseCase {
	uc.clock = clock
	return uc
}

// Create crea una orden de compra en estado pending. A diferencia de las
// ventas no hay verificación de stock (una compra repone, no consume) y el
// precio unitario admite override del cliente; sin override se usa el precio
// de catálogo vigente. El crédito de stock ocurre recién al recibir.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, createdBy string, in dto.CreatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	if in.Supplier == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	items := make([]entity.PurchaseOrderItem, 0, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, it := range in.Items {
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrProductNotFound
		}
		unitPrice := p.Price
		if it.UnitPrice != nil {
			unitPrice = *it.UnitPrice
		}
		items = append(items, entity.PurchaseOrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   unitPrice,
		})
		lines = append(lines, pricing.Line{Quantity: it.Quantity, UnitPrice: unitPrice})
	}
	total, err := pricing.Total(lines)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		now := uc.clock()
		po := &entity.PurchaseOrder{
			ID:                   uuid.New().String(),
			PONumber:             uc.refs.Next(refgen.PurchasePrefix),
			Supplier:             in.Supplier,
			Items:                items,
			TotalAmount:          total,
			Status:               entity.POStatusPending,
			CreatedBy:            createdBy,
			ExpectedDeliveryDate: in.ExpectedDeliveryDate,
			Notes:                in.Notes,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		if err := uc.poRepo.Create(ctx, po); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return po, nil
	}
	return nil, lastErr
}

// UpdateStatus cambia el estado validando la transición. La primera transición
// a received acredita el stock de cada línea y fija received_date en la misma
// transacción; received_date es el token de idempotencia: reenviar "received"
// sobre una orden ya recibida es un no-op para el stock.
func (uc *PurchaseOrderUseCase) UpdateStatus(ctx context.Context, poID string, newStatus entity.PurchaseOrderStatus) (*entity.PurchaseOrder, error) {
	if !newStatus.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if !po.Status.CanTransitionTo(newStatus) {
			return domain.ErrInvalidTransition
		}

		now := uc.clock()
		if newStatus == entity.POStatusReceived && !po.IsReceived() {
			// Entrada de mercancía: crédito por línea + marcado, atómico.
			for _, it := range po.Items {
				if _, err := productRepo.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			if err := poRepo.MarkReceived(ctx, poID, now); err != nil {
				return err
			}
			po.ReceivedDate = &now
		} else if err := poRepo.UpdateStatus(ctx, poID, newStatus, now); err != nil {
			return err
		}
		po.Status = newStatus
		po.UpdatedAt = now
		updated = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Update edita campos no estructurales (proveedor, fecha esperada, notas).
// Una orden recibida está congelada: sus líneas y su efecto de stock son
// historia contable (ErrInvalidState). El chequeo corre bajo el lock de la
// fila (FOR UPDATE), en la misma transacción que la escritura: una recepción
// concurrente que gane el lock primero congela la orden antes de que esta
// edición pueda leerla.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, poID string, in dto.UpdatePurchaseOrderRequest) (*entity.PurchaseOrder, error) {
	var updated *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if po.Status == entity.POStatusReceived {
			return domain.ErrInvalidState
		}
		if in.Supplier != nil {
			if *in.Supplier == "" {
				return domain.ErrInvalidInput
			}
			po.Supplier = *in.Supplier
		}
		if in.ExpectedDeliveryDate != nil {
			po.ExpectedDeliveryDate = in.ExpectedDeliveryDate
		}
		if in.Notes != nil {
			po.Notes = *in.Notes
		}
		po.UpdatedAt = uc.clock()
		if err := poRepo.Update(ctx, po); err != nil {
			return err
		}
		updated = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete elimina una orden de compra no recibida (ErrInvalidState si ya aplicó
// stock). Igual que Update, la guarda se reevalúa bajo el lock de la fila para
// que una recepción concurrente nunca pierda su registro contable.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, poID string) error {
	return uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		poRepo repository.PurchaseOrderRepository,
	) error {
		po, err := poRepo.GetByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if po == nil {
			return domain.ErrNotFound
		}
		if po.Status == entity.POStatusReceived {
			return domain.ErrInvalidState
		}
		return poRepo.Delete(ctx, poID)
	})
}

// GetByID devuelve una orden de compra por ID.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, poID string) (*entity.PurchaseOrder, error) {
	po, err := uc.poRepo.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, domain.ErrNotFound
	}
	return po, nil
}

// List lista órdenes de compra con paginación.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.poRepo.List(ctx, limit, offset)
}
