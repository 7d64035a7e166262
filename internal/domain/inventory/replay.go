package inventory

import (
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ChainBreak asiento cuyo stockAnterior no coincide con el stockNuevo del asiento previo.
type ChainBreak struct {
	MovementID    string
	Expected      decimal.Decimal
	StockAnterior decimal.Decimal
}

// ReplayResult resultado de recorrer el kardex de un producto.
type ReplayResult struct {
	Expected    decimal.Decimal
	Movements   int
	ChainBreaks []ChainBreak
}

// Replay pliega los asientos (ya ordenados por secuencia) partiendo de cero.
// Un AJUSTE actúa como punto de reinicio: fija el stock a su objetivo.
// El primer asiento se encadena contra cero, así que un stockAnterior inicial
// distinto de cero queda reportado como corte aunque un AJUSTE posterior lo absorba.
func Replay(movements []*entity.Movement) (ReplayResult, error) {
	res := ReplayResult{Expected: decimal.Zero, Movements: len(movements)}
	prevNuevo := decimal.Zero
	for _, m := range movements {
		if !m.StockAnterior.Equal(prevNuevo) {
			res.ChainBreaks = append(res.ChainBreaks, ChainBreak{
				MovementID:    m.ID,
				Expected:      prevNuevo,
				StockAnterior: m.StockAnterior,
			})
		}
		p, err := Reapply(m, res.Expected)
		if err != nil {
			return res, err
		}
		res.Expected = p.StockNuevo
		prevNuevo = m.StockNuevo
	}
	return res, nil
}
