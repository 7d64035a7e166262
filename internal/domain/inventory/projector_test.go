package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestProject_Entrada(t *testing.T) {
	for _, tc := range []struct{ s, q int64 }{{0, 0}, {0, 5}, {50, 20}, {7, 1000}} {
		p, err := inventory.Project(d(tc.s), entity.MovementEntrada, d(tc.q), inventory.OversellClampToZero)
		require.NoError(t, err)
		assert.True(t, p.StockNuevo.Equal(d(tc.s+tc.q)), "s=%d q=%d", tc.s, tc.q)
		assert.True(t, p.Quantity.Equal(d(tc.q)))
		assert.False(t, p.Clamped)
	}
}

func TestProject_SalidaTruncaEnCero(t *testing.T) {
	for _, tc := range []struct{ s, q, want int64 }{{10, 3, 7}, {10, 10, 0}, {70, 90, 0}, {0, 1, 0}} {
		p, err := inventory.Project(d(tc.s), entity.MovementSalida, d(tc.q), inventory.OversellClampToZero)
		require.NoError(t, err)
		assert.True(t, p.StockNuevo.Equal(d(tc.want)), "s=%d q=%d", tc.s, tc.q)
		assert.True(t, p.Quantity.Equal(d(tc.q)), "la cantidad persistida es la presentada")
		assert.Equal(t, tc.q > tc.s, p.Clamped)
	}
}

func TestProject_SalidaConPoliticaReject(t *testing.T) {
	_, err := inventory.Project(d(5), entity.MovementSalida, d(6), inventory.OversellReject)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, err := inventory.Project(d(5), entity.MovementSalida, d(5), inventory.OversellReject)
	require.NoError(t, err)
	assert.True(t, p.StockNuevo.IsZero())
}

func TestProject_AjusteFijaObjetivo(t *testing.T) {
	p, err := inventory.Project(d(0), entity.MovementAjuste, d(25), inventory.OversellClampToZero)
	require.NoError(t, err)
	assert.True(t, p.StockNuevo.Equal(d(25)))
	assert.True(t, p.Quantity.Equal(d(25)))

	p, err = inventory.Project(d(40), entity.MovementAjuste, d(25), inventory.OversellClampToZero)
	require.NoError(t, err)
	assert.True(t, p.StockNuevo.Equal(d(25)))
	assert.True(t, p.Quantity.Equal(d(-15)), "delta implícito objetivo - anterior")

	p, err = inventory.Project(d(40), entity.MovementAjuste, decimal.Zero, inventory.OversellClampToZero)
	require.NoError(t, err)
	assert.True(t, p.StockNuevo.IsZero(), "el objetivo puede ser cero")
}

func TestProject_Errores(t *testing.T) {
	_, err := inventory.Project(d(1), entity.MovementKind("MERMA"), d(1), inventory.OversellClampToZero)
	assert.ErrorIs(t, err, domain.ErrInvalidMovementKind)

	for _, k := range []entity.MovementKind{entity.MovementEntrada, entity.MovementSalida, entity.MovementAjuste} {
		_, err := inventory.Project(d(1), k, d(-1), inventory.OversellClampToZero)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, string(k))
	}
}

func TestProject_Decimales(t *testing.T) {
	p, err := inventory.Project(decimal.RequireFromString("12.750"), entity.MovementSalida,
		decimal.RequireFromString("2.5"), inventory.OversellClampToZero)
	require.NoError(t, err)
	assert.Equal(t, "10.25", p.StockNuevo.String())
}

func TestWithinScale(t *testing.T) {
	for _, q := range []string{"0", "12", "0.5", "1.125", "1.1250", "-3.001"} {
		assert.True(t, inventory.WithinScale(decimal.RequireFromString(q)), q)
	}
	for _, q := range []string{"0.0005", "1.1251", "7.0000001"} {
		assert.False(t, inventory.WithinScale(decimal.RequireFromString(q)), q)
	}
}

func TestParseOversellPolicy(t *testing.T) {
	p, err := inventory.ParseOversellPolicy("")
	require.NoError(t, err)
	assert.Equal(t, inventory.OversellClampToZero, p)

	p, err = inventory.ParseOversellPolicy(" REJECT ")
	require.NoError(t, err)
	assert.Equal(t, inventory.OversellReject, p)

	_, err = inventory.ParseOversellPolicy("negativo")
	assert.Error(t, err)
}

// Escenario de referencia: 50 -> ENTRADA 20 -> SALIDA 90 -> AJUSTE 25.
func TestReplay_EscenarioProductoP(t *testing.T) {
	ledger := []*entity.Movement{
		{ID: "m0", Kind: entity.MovementAjuste, Quantity: d(50), StockAnterior: d(0), StockNuevo: d(50)},
		{ID: "m1", Kind: entity.MovementEntrada, Quantity: d(20), StockAnterior: d(50), StockNuevo: d(70)},
		{ID: "m2", Kind: entity.MovementSalida, Quantity: d(90), StockAnterior: d(70), StockNuevo: d(0)},
		{ID: "m3", Kind: entity.MovementAjuste, Quantity: d(25), StockAnterior: d(0), StockNuevo: d(25)},
	}
	res, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, res.Expected.Equal(d(25)))
	assert.Equal(t, 4, res.Movements)
	assert.Empty(t, res.ChainBreaks)
}

func TestReplay_DetectaCortesDeCadena(t *testing.T) {
	ledger := []*entity.Movement{
		{ID: "m1", Kind: entity.MovementEntrada, Quantity: d(10), StockAnterior: d(0), StockNuevo: d(10)},
		{ID: "m2", Kind: entity.MovementEntrada, Quantity: d(5), StockAnterior: d(12), StockNuevo: d(17)},
	}
	res, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, res.Expected.Equal(d(15)), "el pliegue ignora el corte y sigue desde lo calculado")
	require.Len(t, res.ChainBreaks, 1)
	assert.Equal(t, "m2", res.ChainBreaks[0].MovementID)
	assert.True(t, res.ChainBreaks[0].Expected.Equal(d(10)))
}

// Un saldo inicial sin asiento que lo justifique es un corte contra cero.
func TestReplay_SaldoInicialSinAsientoEsCorte(t *testing.T) {
	ledger := []*entity.Movement{
		{ID: "m1", Kind: entity.MovementEntrada, Quantity: d(20), StockAnterior: d(50), StockNuevo: d(70)},
	}
	res, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, res.Expected.Equal(d(20)), "el pliegue parte de cero")
	require.Len(t, res.ChainBreaks, 1)
	assert.Equal(t, "m1", res.ChainBreaks[0].MovementID)
	assert.True(t, res.ChainBreaks[0].Expected.IsZero())
	assert.True(t, res.ChainBreaks[0].StockAnterior.Equal(d(50)))
}

// Una ENTRADA 0 sobre un stock sembrado no oculta la diferencia.
func TestReplay_EntradaCeroNoOcultaSaldoInicial(t *testing.T) {
	ledger := []*entity.Movement{
		{ID: "m1", Kind: entity.MovementEntrada, Quantity: d(0), StockAnterior: d(50), StockNuevo: d(50)},
	}
	res, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, res.Expected.IsZero())
	require.Len(t, res.ChainBreaks, 1)
}

// El AJUSTE reinicia el pliegue: lo posterior se calcula desde su objetivo.
func TestReplay_AjusteReiniciaDesdeCero(t *testing.T) {
	ledger := []*entity.Movement{
		{ID: "m1", Kind: entity.MovementAjuste, Quantity: d(40), StockAnterior: d(0), StockNuevo: d(40)},
		{ID: "m2", Kind: entity.MovementSalida, Quantity: d(15), StockAnterior: d(40), StockNuevo: d(25)},
	}
	res, err := inventory.Replay(ledger)
	require.NoError(t, err)
	assert.True(t, res.Expected.Equal(d(25)))
	assert.Empty(t, res.ChainBreaks)
}

func TestReplay_VacioEsCero(t *testing.T) {
	res, err := inventory.Replay(nil)
	require.NoError(t, err)
	assert.True(t, res.Expected.IsZero())
	assert.Zero(t, res.Movements)
}
