package orders

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

// Intentos de generación de número de orden ante colisión del índice único.
const maxNumberAttempts = 3

// OrderUseCase ciclo de vida de órdenes de venta: creación (con débito de
// stock), cancelación (con reposición) y transiciones de estado validadas.
// Todas las operaciones que tocan stock corren dentro de una transacción
// (TxRunner) con Commit/Rollback todo-o-nada.
type OrderUseCase struct {
	txRunner  TxRunner
	orderRepo repository.OrderRepository
	refs      RefGenerator
	clock     func() time.Time
}

// NewOrderUseCase construye el caso de uso. orderRepo es el repositorio
// atado al pool, para lecturas fuera de transacción.
func NewOrderUseCase(txRunner TxRunner, orderRepo repository.OrderRepository, refs RefGenerator) *OrderUseCase {
	return &OrderUseCase{txRunner: txRunner, orderRepo: orderRepo, refs: refs, clock: time.Now}
}

// WithClock reemplaza el reloj (tests deterministas).
func (uc *OrderUseCase) WithClock(clock func() time.Time) *OrderUseCase {
	uc.clock = clock
	return uc
}

// Create crea una orden de venta para userID:
//  1. Rechaza órdenes sin líneas (ErrEmptyOrder) o con cantidades < 1.
//  2. Dentro de una transacción resuelve cada producto (ErrProductNotFound si
//     falta) y toma snapshot de nombre y precio de catálogo — el precio del
//     cliente nunca se usa en ventas.
//  3. Debita el stock por línea con el ajuste condicional atómico del ledger;
//     ErrInsufficientStock aborta la transacción completa, así un fallo en la
//     línea n nunca deja aplicados los débitos de las líneas 1..n-1.
//  4. Calcula TotalAmount = Σ cantidad × precio snapshot y persiste la orden
//     en estado pending.
//
// Si el número de orden colisiona con el índice único, se regenera y se
// reintenta la transacción completa (el débito anterior ya fue revertido).
func (uc *OrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*entity.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, domain.ErrInvalidInput
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number := uc.refs.Next(refgen.OrderPrefix)
		order, err := uc.createWithNumber(ctx, userID, number, in)
		if errors.Is(err, domain.ErrDuplicate) {
			lastErr = err
			continue
		}
		return order, err
	}
	return nil, lastErr
}

func (uc *OrderUseCase) createWithNumber(ctx context.Context, userID, number string, in dto.CreateOrderRequest) (*entity.Order, error) {
	var created *entity.Order
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		items := make([]entity.OrderItem, 0, len(in.Items))
		lines := make([]pricing.Line, 0, len(in.Items))
		for _, it := range in.Items {
			p, err := productRepo.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrProductNotFound
			}
			items = append(items, entity.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price,
			})
			lines = append(lines, pricing.Line{Quantity: it.Quantity, UnitPrice: p.Price})
		}

		// Débito por línea. El UPDATE condicional garantiza stock >= 0 bajo
		// concurrencia; cualquier fallo revierte los débitos anteriores.
		for _, it := range items {
			if _, err := productRepo.AdjustStock(ctx, it.ProductID, -it.Quantity); err != nil {
				return err
			}
		}

		total, err := pricing.Total(lines)
		if err != nil {
			return err
		}

		now := uc.clock()
		order := &entity.Order{
			ID:              uuid.New().String(),
			OrderNumber:     number,
			UserID:          userID,
			Items:           items,
			TotalAmount:     total,
			Status:          entity.OrderStatusPending,
			ShippingAddress: in.ShippingAddress,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Cancel cancela una orden: solo el dueño o un admin pueden hacerlo, y solo
// en estado pending o processing. Repone el stock de cada línea (crédito) y
// marca cancelled en la misma transacción: si un crédito falla, la orden no
// queda marcada como cancelada.
func (uc *OrderUseCase) Cancel(ctx context.Context, orderID, actingUserID string, isAdmin bool) error {
	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !isAdmin && order.UserID != actingUserID {
			return domain.ErrForbidden
		}
		if !order.Status.CanCancel() {
			return domain.ErrInvalidState
		}
		if err := restock(ctx, productRepo, order.Items); err != nil {
			return err
		}
		return orderRepo.UpdateStatus(ctx, orderID, entity.OrderStatusCancelled, uc.clock())
	})
}

// UpdateStatus cambia el estado de una orden validando la transición contra
// la tabla de estados (ErrInvalidTransition en aristas ilegales). Una
// transición a cancelled por esta vía repone stock igual que Cancel, para que
// el ledger nunca dependa del endpoint usado.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID string, newStatus entity.OrderStatus) (*entity.Order, error) {
	if !newStatus.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Order
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		order, err := orderRepo.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Status.CanTransitionTo(newStatus) {
			return domain.ErrInvalidTransition
		}
		if newStatus == entity.OrderStatusCancelled {
			if err := restock(ctx, productRepo, order.Items); err != nil {
				return err
			}
		}
		now := uc.clock()
		if err := orderRepo.UpdateStatus(ctx, orderID, newStatus, now); err != nil {
			return err
		}
		order.Status = newStatus
		order.UpdatedAt = now
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID devuelve la orden si el solicitante es el dueño o admin.
func (uc *OrderUseCase) GetByID(ctx context.Context, orderID, actingUserID string, isAdmin bool) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !isAdmin && order.UserID != actingUserID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// List lista órdenes: las propias para un usuario normal, todas para admin.
func (uc *OrderUseCase) List(ctx context.Context, actingUserID string, isAdmin bool, limit, offset int) ([]*entity.Order, error) {
	if isAdmin {
		return uc.orderRepo.List(ctx, limit, offset)
	}
	return uc.orderRepo.ListByUser(ctx, actingUserID, limit, offset)
}

// restock acredita al ledger la cantidad de cada línea (reposición por cancelación).
func restock(ctx context.Context, productRepo repository.ProductRepository, items []entity.OrderItem) error {
	for _, it := range items {
		if _, err := productRepo.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
