package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OversellPolicy decide qué hacer con una SALIDA mayor al stock disponible.
type OversellPolicy string

const (
	// OversellClampToZero trunca la salida: el stock queda en cero y el movimiento se registra igual.
	OversellClampToZero OversellPolicy = "clamp_to_zero"
	// OversellReject rechaza la salida con ErrInsufficientStock.
	OversellReject OversellPolicy = "reject"
)

// ParseOversellPolicy interpreta el valor de configuración; vacío equivale a OversellClampToZero.
func ParseOversellPolicy(s string) (OversellPolicy, error) {
	switch OversellPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", OversellClampToZero:
		return OversellClampToZero, nil
	case OversellReject:
		return OversellReject, nil
	}
	return "", fmt.Errorf("política de sobreventa desconocida: %q", s)
}

// QuantityScale decimales que admite una cantidad; coincide con NUMERIC(14,3).
const QuantityScale int32 = 3

// WithinScale indica si q se almacena sin redondeo.
func WithinScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// Projection resultado de proyectar un movimiento sobre el stock previo.
type Projection struct {
	StockNuevo decimal.Decimal
	Quantity   decimal.Decimal // cantidad a persistir; en AJUSTE es objetivo - stockAnterior
	Clamped    bool            // la SALIDA se truncó en cero
}

// Project calcula el stock resultante (función pura, sin I/O).
//
//	ENTRADA: stockAnterior + cantidad
//	SALIDA:  max(0, stockAnterior - cantidad) con OversellClampToZero
//	AJUSTE:  cantidad es el stock objetivo; la cantidad persistida es el delta implícito
func Project(stockAnterior decimal.Decimal, kind entity.MovementKind, quantity decimal.Decimal, policy OversellPolicy) (Projection, error) {
	if !kind.Valid() {
		return Projection{}, domain.ErrInvalidMovementKind
	}
	if quantity.IsNegative() {
		return Projection{}, domain.ErrInvalidQuantity
	}
	switch kind {
	case entity.MovementEntrada:
		return Projection{StockNuevo: stockAnterior.Add(quantity), Quantity: quantity}, nil
	case entity.MovementSalida:
		next := stockAnterior.Sub(quantity)
		if next.IsNegative() {
			if policy == OversellReject {
				return Projection{}, domain.ErrInsufficientStock
			}
			return Projection{StockNuevo: decimal.Zero, Quantity: quantity, Clamped: true}, nil
		}
		return Projection{StockNuevo: next, Quantity: quantity}, nil
	default:
		return Projection{StockNuevo: quantity, Quantity: quantity.Sub(stockAnterior)}, nil
	}
}

// Reapply recalcula un asiento ya persistido sobre un nuevo stock anterior.
// ENTRADA y SALIDA reaplican su cantidad; AJUSTE conserva su objetivo absoluto (StockNuevo).
func Reapply(m *entity.Movement, stockAnterior decimal.Decimal) (Projection, error) {
	if m.Kind == entity.MovementAjuste {
		return Project(stockAnterior, m.Kind, m.StockNuevo, OversellClampToZero)
	}
	// Los asientos históricos ya fueron aceptados; al reaplicarlos solo cabe truncar.
	return Project(stockAnterior, m.Kind, m.Quantity, OversellClampToZero)
}
