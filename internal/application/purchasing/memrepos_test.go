package purchasing_test

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/purchasing"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Mismo patrón que en orders: memTxRunner restaura snapshot
// si fn falla, emulando el Rollback de la transacción real.
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	products map[string]*entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	m := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		m.products[p.ID] = &cp
	}
	return m
}

func (m *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) Update(_ context.Context, p *entity.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range m.products {
		cp := *p
		list = append(list, &cp)
	}
	return list, nil
}

func (m *memProductRepo) ListLowStock(_ context.Context, _, _ int) ([]*entity.Product, error) {
	var list []*entity.Product
	for _, p := range m.products {
		if p.IsLowStock() {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) error {
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) AdjustStock(_ context.Context, productID string, delta int64) (int64, error) {
	p, ok := m.products[productID]
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return 0, domain.ErrInsufficientStock
	}
	p.Stock += delta
	return p.Stock, nil
}

func (m *memProductRepo) stockOf(id string) int64 {
	return m.products[id].Stock
}

func (m *memProductRepo) snapshot() map[string]*entity.Product {
	cp := make(map[string]*entity.Product, len(m.products))
	for id, p := range m.products {
		c := *p
		cp[id] = &c
	}
	return cp
}

type memPORepo struct {
	pos map[string]*entity.PurchaseOrder
}

func newMemPORepo() *memPORepo {
	return &memPORepo{pos: make(map[string]*entity.PurchaseOrder)}
}

// Create emula el índice único de po_number (ErrDuplicate en colisión).
func (m *memPORepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	for _, existing := range m.pos {
		if existing.PONumber == po.PONumber {
			return domain.ErrDuplicate
		}
	}
	m.pos[po.ID] = clonePO(po)
	return nil
}

func (m *memPORepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	po, ok := m.pos[id]
	if !ok {
		return nil, nil
	}
	return clonePO(po), nil
}

func (m *memPORepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return m.GetByID(ctx, id)
}

func (m *memPORepo) UpdateStatus(_ context.Context, id string, status entity.PurchaseOrderStatus, updatedAt time.Time) error {
	po, ok := m.pos[id]
	if !ok {
		return domain.ErrNotFound
	}
	po.Status = status
	po.UpdatedAt = updatedAt
	return nil
}

// MarkReceived replica el doble candado del UPDATE real: solo escribe si
// received_date sigue en NULL.
func (m *memPORepo) MarkReceived(_ context.Context, id string, receivedAt time.Time) error {
	po, ok := m.pos[id]
	if !ok {
		return domain.ErrNotFound
	}
	if po.ReceivedDate != nil {
		return domain.ErrInvalidState
	}
	po.Status = entity.POStatusReceived
	po.ReceivedDate = &receivedAt
	po.UpdatedAt = receivedAt
	return nil
}

func (m *memPORepo) Update(_ context.Context, po *entity.PurchaseOrder) error {
	if _, ok := m.pos[po.ID]; !ok {
		return domain.ErrNotFound
	}
	m.pos[po.ID] = clonePO(po)
	return nil
}

func (m *memPORepo) Delete(_ context.Context, id string) error {
	if _, ok := m.pos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.pos, id)
	return nil
}

func (m *memPORepo) List(_ context.Context, _, _ int) ([]*entity.PurchaseOrder, error) {
	var list []*entity.PurchaseOrder
	for _, po := range m.pos {
		list = append(list, clonePO(po))
	}
	return list, nil
}

func (m *memPORepo) snapshot() map[string]*entity.PurchaseOrder {
	cp := make(map[string]*entity.PurchaseOrder, len(m.pos))
	for id, po := range m.pos {
		cp[id] = clonePO(po)
	}
	return cp
}

func clonePO(po *entity.PurchaseOrder) *entity.PurchaseOrder {
	cp := *po
	cp.Items = append([]entity.PurchaseOrderItem(nil), po.Items...)
	if po.ReceivedDate != nil {
		d := *po.ReceivedDate
		cp.ReceivedDate = &d
	}
	if po.ExpectedDeliveryDate != nil {
		d := *po.ExpectedDeliveryDate
		cp.ExpectedDeliveryDate = &d
	}
	return &cp
}

// interceptTxRunner ejecuta before (una sola vez) antes de delegar en el
// runner real. Emula a otro actor que gana el lock de la fila y commitea
// justo antes de que esta transacción lea el estado.
type interceptTxRunner struct {
	inner  purchasing.TxRunner
	before func()
}

func (r *interceptTxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	if r.before != nil {
		b := r.before
		r.before = nil
		b()
	}
	return r.inner.Run(ctx, fn)
}

type memTxRunner struct {
	products *memProductRepo
	pos      *memPORepo
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	poRepo repository.PurchaseOrderRepository,
) error) error {
	productSnap := r.products.snapshot()
	poSnap := r.pos.snapshot()
	if err := fn(r.products, r.pos); err != nil {
		r.products.products = productSnap
		r.pos.pos = poSnap
		return err
	}
	return nil
}
