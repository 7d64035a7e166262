package memory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

// Un reloj que retrocede no altera el orden del kardex: manda seq.
func TestListByProduct_OrdenaPorSeq(t *testing.T) {
	store := memory.NewStore()
	repo := store.Movements()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stock := decimal.Zero
	for i, id := range []string{"m1", "m2", "m3"} {
		next := stock.Add(decimal.NewFromInt(1))
		require.NoError(t, repo.Create(t.Context(), &entity.Movement{
			ID:            id,
			ProductID:     "P",
			Kind:          entity.MovementEntrada,
			Quantity:      decimal.NewFromInt(1),
			StockAnterior: stock,
			StockNuevo:    next,
			CreatedAt:     base.Add(-time.Duration(i) * time.Minute),
		}))
		stock = next
	}

	ledger, err := repo.ListByProduct(t.Context(), "P")
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	for i, id := range []string{"m1", "m2", "m3"} {
		assert.Equal(t, id, ledger[i].ID)
		assert.Equal(t, int64(i+1), ledger[i].Seq)
	}
}
