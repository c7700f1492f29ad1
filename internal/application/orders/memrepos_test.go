package orders_test

import (
	"context"
	"time"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria para los tests del caso de uso. memTxRunner emula la
// semántica Commit/Rollback de la transacción real: toma snapshot del estado
// antes de ejecutar fn y lo restaura si fn falla, así los tests de atomicidad
// verifican lo mismo que garantiza PostgreSQL.
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

// AdjustStock replica el contrato del UPDATE condicional: atómico, falla con
// ErrInsufficientStock sin modificar nada si el resultado sería negativo.
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

type memOrderRepo struct {
	orders map[string]*entity.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*entity.Order)}
}

// Create emula el índice único de order_number (ErrDuplicate en colisión).
func (m *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	for _, o := range m.orders {
		if o.OrderNumber == order.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *order
	cp.Items = append([]entity.OrderItem(nil), order.Items...)
	m.orders[order.ID] = &cp
	return nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *memOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus, updatedAt time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	return nil
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*entity.Order, error) {
	var list []*entity.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			cp := *o
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (m *memOrderRepo) List(_ context.Context, _, _ int) ([]*entity.Order, error) {
	var list []*entity.Order
	for _, o := range m.orders {
		cp := *o
		list = append(list, &cp)
	}
	return list, nil
}

func (m *memOrderRepo) snapshot() map[string]*entity.Order {
	cp := make(map[string]*entity.Order, len(m.orders))
	for id, o := range m.orders {
		c := *o
		c.Items = append([]entity.OrderItem(nil), o.Items...)
		cp[id] = &c
	}
	return cp
}

// memTxRunner todo-o-nada sobre los fakes: restaura el snapshot si fn falla.
type memTxRunner struct {
	products *memProductRepo
	orders   *memOrderRepo
}

func (r *memTxRunner) Run(_ context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	productSnap := r.products.snapshot()
	orderSnap := r.orders.snapshot()
	if err := fn(r.products, r.orders); err != nil {
		r.products.products = productSnap
		r.orders.orders = orderSnap
		return err
	}
	return nil
}

// seqRefGen devuelve números predefinidos en orden (tests de colisión).
type seqRefGen struct {
	refs []string
	i    int
}

func (g *seqRefGen) Next(prefix string) string {
	ref := g.refs[g.i%len(g.refs)]
	g.i++
	return ref
}
