package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock corriente.
// Stock solo lo modifica el motor de movimientos (kardex); el catálogo nunca lo escribe.
type Product struct {
	ID          string
	SKU         string // código único
	Name        string
	Stock       decimal.Decimal // stock actual (kg, unidades, cajas según UnitMeasure)
	MinStock    decimal.Decimal // umbral de stock mínimo
	UnitMeasure string
	Active      bool // desactivación lógica; los productos con movimientos no se eliminan
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BelowMinimum indica si el stock está por debajo del umbral mínimo.
func (p *Product) BelowMinimum() bool {
	return p.Stock.LessThan(p.MinStock)
}
