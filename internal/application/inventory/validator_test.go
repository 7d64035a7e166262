package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domaininv "github.com/jhoicas/kardex-api/internal/domain/inventory"
)

func TestAuditProduct_DetectaDrift(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("P", "TOM-001", 0)
	f.record(t, "P", entity.MovementEntrada, 12)
	f.store.OverwriteStock("P", decimal.NewFromInt(15))

	res, err := f.validator.AuditProduct(t.Context(), "P")
	require.NoError(t, err)
	assert.True(t, res.HasDrift())
	assertDec(t, "12", res.Expected)
	assertDec(t, "15", res.Actual)
	assertDec(t, "3", res.Drift)
	assert.Empty(t, res.ChainBreaks)
}

func TestAuditProduct_SinMovimientosEsperaCero(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("P", "TOM-001", 0)
	f.addProduct("Q", "TOM-002", 4)

	res, err := f.validator.AuditProduct(t.Context(), "P")
	require.NoError(t, err)
	assert.True(t, res.Consistent())

	res, err = f.validator.AuditProduct(t.Context(), "Q")
	require.NoError(t, err)
	assertDec(t, "4", res.Drift, "stock sin respaldo en el kardex")
}

func TestAuditProduct_Errores(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	_, err := f.validator.AuditProduct(t.Context(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	_, err = f.validator.AuditProduct(t.Context(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// AuditAll pagina (tamaño 2 en el fixture) e incluye inactivos.
func TestAuditAll_SoloDevuelveDesalineados(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		f.addProduct(id, "SKU-"+id, 0)
		f.record(t, id, entity.MovementEntrada, 10)
	}
	f.store.AddProduct(&entity.Product{ID: "X", SKU: "SKU-X", Stock: decimal.NewFromInt(7), Active: false})
	f.store.OverwriteStock("C", decimal.NewFromInt(9))

	drifted, err := f.validator.AuditAll(t.Context())
	require.NoError(t, err)
	require.Len(t, drifted, 2)
	assert.Equal(t, "C", drifted[0].ProductID)
	assertDec(t, "-1", drifted[0].Drift)
	assert.Equal(t, "X", drifted[1].ProductID)
	assert.Equal(t, 2, f.metrics.lastDrifted)
}

func TestAuditAll_SinDrift(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "SKU-A", 0)
	f.record(t, "A", entity.MovementAjuste, 3)

	drifted, err := f.validator.AuditAll(t.Context())
	require.NoError(t, err)
	assert.Empty(t, drifted)
	assert.Zero(t, f.metrics.lastDrifted)
}
