// Package refgen genera números de referencia externos para órdenes de venta
// y de compra: <PREFIX>-<unix millis>-<sufijo 000..999>.
//
// El timestamp y el sufijo aleatorio hacen la colisión improbable pero no
// imposible; la unicidad real la garantiza el índice único en la base de
// datos más el reintento del caso de uso al recibir ErrDuplicate. Reloj y
// aleatoriedad son dependencias inyectables para tests deterministas.
package refgen

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Prefijos usados por la aplicación.
const (
	OrderPrefix    = "ORD"
	PurchasePrefix = "PO"
)

// Generator produce números de referencia. Seguro para uso concurrente.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	intn func(n int) int
}

// New construye un generador con reloj de sistema y aleatoriedad propia.
func New() *Generator {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Generator{now: time.Now, intn: rnd.Intn}
}

// NewWithSource construye un generador con reloj y aleatoriedad inyectados (tests).
func NewWithSource(now func() time.Time, intn func(n int) int) *Generator {
	return &Generator{now: now, intn: intn}
}

// Next devuelve la siguiente referencia para el prefijo dado, por ejemplo
// "ORD-1717610052123-047".
func (g *Generator) Next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%s-%d-%03d", prefix, g.now().UnixMilli(), g.intn(1000))
}
