package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación del puerto PurchaseOrderRepository sobre
// PostgreSQL (usable con pool o tx). Líneas en purchase_order_items.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden de compra y sus líneas. po_number único -> ErrDuplicate.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, po_number, supplier, total_amount, status, created_by, expected_delivery_date, received_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		po.ID, po.PONumber, po.Supplier, po.TotalAmount, string(po.Status),
		po.CreatedBy, po.ExpectedDeliveryDate, po.ReceivedDate, po.Notes,
		po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	itemQuery := `
		INSERT INTO purchase_order_items (po_id, position, product_id, product_name, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range po.Items {
		_, err := r.q.Exec(ctx, itemQuery,
			po.ID, i, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una orden de compra con sus líneas. Devuelve nil, nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE),
// serializa recepciones concurrentes de la misma orden.
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, po_number, supplier, total_amount, status, created_by, expected_delivery_date, received_date, notes, created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var po entity.PurchaseOrder
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.PONumber, &po.Supplier, &po.TotalAmount, &status,
		&po.CreatedBy, &po.ExpectedDeliveryDate, &po.ReceivedDate, &po.Notes,
		&po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	po.Status = entity.PurchaseOrderStatus(status)
	items, err := r.loadItems(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

// UpdateStatus escribe el nuevo estado sin tocar received_date.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus, updatedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkReceived fija status=received y received_date en una sola escritura,
// solo si received_date sigue null (doble guarda contra doble crédito).
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, id string, receivedAt time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE purchase_orders SET status = $2, received_date = $3, updated_at = $3
		 WHERE id = $1 AND received_date IS NULL`,
		id, string(entity.POStatusReceived), receivedAt,
	)
	if err != nil {
		return fmt.Errorf("mark purchase order received: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// Update actualiza campos editables (proveedor, fecha esperada, notas). La
// guarda de estado recibido vive en el caso de uso; las líneas no se editan.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE purchase_orders SET supplier = $2, expected_delivery_date = $3, notes = $4, updated_at = $5
		 WHERE id = $1`,
		po.ID, po.Supplier, po.ExpectedDeliveryDate, po.Notes, po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la orden de compra; las líneas caen por el FK ON DELETE CASCADE.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista órdenes de compra con paginación.
func (r *PurchaseOrderRepo) List(ctx context.Context, limit, offset int) ([]*entity.PurchaseOrder, error) {
	query := `
		SELECT id, po_number, supplier, total_amount, status, created_by, expected_delivery_date, received_date, notes, created_at, updated_at
		FROM purchase_orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		var po entity.PurchaseOrder
		var status string
		if err := rows.Scan(&po.ID, &po.PONumber, &po.Supplier, &po.TotalAmount, &status,
			&po.CreatedBy, &po.ExpectedDeliveryDate, &po.ReceivedDate, &po.Notes,
			&po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		po.Status = entity.PurchaseOrderStatus(status)
		list = append(list, &po)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, po := range list {
		items, err := r.loadItems(ctx, po.ID)
		if err != nil {
			return nil, err
		}
		po.Items = items
	}
	return list, nil
}

func (r *PurchaseOrderRepo) loadItems(ctx context.Context, poID string) ([]entity.PurchaseOrderItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT product_id, product_name, quantity, unit_price FROM purchase_order_items WHERE po_id = $1 ORDER BY position`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("load purchase order items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseOrderItem
	for rows.Next() {
		var it entity.PurchaseOrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
