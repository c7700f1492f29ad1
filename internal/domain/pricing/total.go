package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pedidos-api/internal/domain"
)

// Line una pareja cantidad/precio unitario para el cálculo de totales.
type Line struct {
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Total implementa el cálculo de total de una orden (servicio de dominio, puro):
// Total = Σ Cantidad * PrecioUnitario. Sin efectos secundarios; rechaza
// cantidades o precios negativos con ErrInvalidInput.
func Total(lines []Line) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity < 0 || l.UnitPrice.IsNegative() {
			return decimal.Zero, domain.ErrInvalidInput
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total, nil
}
