//go:build integration

package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/postgres"
)

// Requiere una base real con las migraciones aplicadas:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL no definido; test de integración omitido")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// El UPDATE condicional (stock = stock + delta WHERE stock + delta >= 0) debe
// serializar débitos concurrentes sin dejar nunca stock negativo: con stock 10
// y débitos de a 3, a lo sumo 3 pueden ganar y el resto recibe
// ErrInsufficientStock.
func TestAdjustStock_DebitosConcurrentes(t *testing.T) {
	pool := testPool(t)
	repo := postgres.NewProductRepository(pool)
	ctx := context.Background()

	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       "SKU-IT-" + uuid.New().String(),
		Name:      "Producto concurrencia",
		Price:     decimal.RequireFromString("1.00"),
		Stock:     10,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, p))
	t.Cleanup(func() { _ = repo.Delete(context.Background(), p.ID) })

	const workers = 16
	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustStock(ctx, p.ID, -3)
			if err == nil {
				atomic.AddInt64(&wins, 1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), wins, "con stock 10 y débitos de 3 ganan exactamente 3")

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(10-3*wins), got.Stock)
	assert.GreaterOrEqual(t, got.Stock, int64(0), "el stock nunca queda negativo")
}
