package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/pkg/refgen"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 5, 17, 54, 12, 0, time.UTC)
}

func testProduct(id string, price string, stock int64) *entity.Product {
	return &entity.Product{
		ID:    id,
		SKU:   "SKU-" + id,
		Name:  "Producto " + id,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

type fixture struct {
	products *memProductRepo
	orders   *memOrderRepo
	uc       *orders.OrderUseCase
}

func newFixture(products ...*entity.Product) *fixture {
	productRepo := newMemProductRepo(products...)
	orderRepo := newMemOrderRepo()
	runner := &memTxRunner{products: productRepo, orders: orderRepo}
	uc := orders.NewOrderUseCase(runner, orderRepo, refgen.New()).WithClock(fixedClock)
	return &fixture{products: productRepo, orders: orderRepo, uc: uc}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_DebitaStockYCalculaTotal(t *testing.T) {
	f := newFixture(testProduct("p1", "25.50", 10))

	order, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items:           []dto.OrderItemRequest{{ProductID: "p1", Quantity: 4}},
		ShippingAddress: "Calle 10 #5-23",
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	// Snapshot de catálogo: nombre y precio congelados en la línea.
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, "user-1", order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Producto p1", order.Items[0].ProductName)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("25.50")))

	// Total = 4 × 25.50 = 102.00 y débito 10 → 6.
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("102.00")),
		"total esperado 102.00, fue %s", order.TotalAmount)
	assert.Equal(t, int64(6), f.products.stockOf("p1"))
}

func TestCreateOrder_SinLineas(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestCreateOrder_CantidadInvalida(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 5))

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), f.products.stockOf("p1"))
}

func TestCreateOrder_ProductoInexistente(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 5))

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "no-existe", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateOrder_StockInsuficiente(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 2))

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	// El stock no se toca: el débito condicional falló antes de escribir.
	assert.Equal(t, int64(2), f.products.stockOf("p1"))
}

func TestCreateOrder_FalloParcialNoDejaDebitos(t *testing.T) {
	// Tres líneas; la tercera no tiene stock. El rollback de la transacción
	// debe dejar las dos primeras intactas: todo-o-nada.
	f := newFixture(
		testProduct("p1", "10.00", 8),
		testProduct("p2", "20.00", 8),
		testProduct("p3", "30.00", 1),
	)

	_, err := f.uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p2", Quantity: 3},
			{ProductID: "p3", Quantity: 5},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(8), f.products.stockOf("p1"))
	assert.Equal(t, int64(8), f.products.stockOf("p2"))
	assert.Equal(t, int64(1), f.products.stockOf("p3"))
	list, _ := f.orders.List(context.Background(), 100, 0)
	assert.Empty(t, list, "no debe quedar ninguna orden persistida")
}

func TestCreateOrder_ReintentaNumeroDuplicado(t *testing.T) {
	productRepo := newMemProductRepo(testProduct("p1", "10.00", 10))
	orderRepo := newMemOrderRepo()
	runner := &memTxRunner{products: productRepo, orders: orderRepo}

	// El generador repite ORD-1-001 en el segundo intento (colisión con la
	// primera orden) y recién entrega ORD-1-002 en el tercero.
	gen := &seqRefGen{refs: []string{"ORD-1-001", "ORD-1-001", "ORD-1-002"}}
	uc := orders.NewOrderUseCase(runner, orderRepo, gen).WithClock(fixedClock)

	first, err := uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-001", first.OrderNumber)

	second, err := uc.Create(context.Background(), "user-1", dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-002", second.OrderNumber)

	// Cada reintento revirtió su débito: solo dos unidades vendidas.
	assert.Equal(t, int64(8), productRepo.stockOf("p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func createOrderForTest(t *testing.T, f *fixture, userID string, productID string, qty int64) *entity.Order {
	t.Helper()
	order, err := f.uc.Create(context.Background(), userID, dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: productID, Quantity: qty}},
	})
	require.NoError(t, err)
	return order
}

func TestCancelOrder_ReponeStock(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 4)
	require.Equal(t, int64(6), f.products.stockOf("p1"))

	err := f.uc.Cancel(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)

	// Conservación: el crédito devuelve exactamente lo debitado.
	assert.Equal(t, int64(10), f.products.stockOf("p1"))
	got, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)
}

func TestCancelOrder_AjenoEsForbidden(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 4)

	err := f.uc.Cancel(context.Background(), order.ID, "user-2", false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Nada cambió: ni stock ni estado.
	assert.Equal(t, int64(6), f.products.stockOf("p1"))
	got, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
}

func TestCancelOrder_AdminPuedeCancelarAjena(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 4)

	err := f.uc.Cancel(context.Background(), order.ID, "admin-1", true)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.products.stockOf("p1"))
}

func TestCancelOrder_EstadoNoCancelable(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 4)

	// pending → processing → shipped: ya no se puede cancelar.
	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatusProcessing)
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatusShipped)
	require.NoError(t, err)

	err = f.uc.Cancel(context.Background(), order.ID, "user-1", false)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(6), f.products.stockOf("p1"))
}

func TestCancelOrder_Inexistente(t *testing.T) {
	f := newFixture()
	err := f.uc.Cancel(context.Background(), "no-existe", "user-1", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateStatus
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateOrderStatus_FlujoCompleto(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 2)

	for _, next := range []entity.OrderStatus{
		entity.OrderStatusProcessing,
		entity.OrderStatusShipped,
		entity.OrderStatusDelivered,
	} {
		updated, err := f.uc.UpdateStatus(context.Background(), order.ID, next)
		require.NoError(t, err, "transición a %s", next)
		assert.Equal(t, next, updated.Status)
	}
}

func TestUpdateOrderStatus_TransicionIlegal(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 2)

	// pending → delivered salta estados intermedios.
	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatusDelivered)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, _ := f.orders.GetByID(context.Background(), order.ID)
	assert.Equal(t, entity.OrderStatusPending, got.Status)
}

func TestUpdateOrderStatus_EstadoDesconocido(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 2)

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatus("archivada"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateOrderStatus_CancelledTambienRepone(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 4)

	_, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatusProcessing)
	require.NoError(t, err)

	// Cancelar vía cambio de estado repone igual que Cancel.
	updated, err := f.uc.UpdateStatus(context.Background(), order.ID, entity.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, updated.Status)
	assert.Equal(t, int64(10), f.products.stockOf("p1"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas con autorización
// ──────────────────────────────────────────────────────────────────────────────

func TestGetOrderByID_Autorizacion(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 10))
	order := createOrderForTest(t, f, "user-1", "p1", 1)

	got, err := f.uc.GetByID(context.Background(), order.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.uc.GetByID(context.Background(), order.ID, "user-2", false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err = f.uc.GetByID(context.Background(), order.ID, "admin-1", true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListOrders_PropiasVsTodas(t *testing.T) {
	f := newFixture(testProduct("p1", "10.00", 100))
	createOrderForTest(t, f, "user-1", "p1", 1)
	createOrderForTest(t, f, "user-1", "p1", 1)
	createOrderForTest(t, f, "user-2", "p1", 1)

	own, err := f.uc.List(context.Background(), "user-1", false, 50, 0)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := f.uc.List(context.Background(), "admin-1", true, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
