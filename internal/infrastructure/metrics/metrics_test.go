package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/infrastructure/metrics"
)

func TestPrometheus_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.MovementRecorded(entity.MovementSalida, true)
	m.MovementRecorded(entity.MovementSalida, false)
	m.MovementRecorded(entity.MovementEntrada, false)
	m.MovementReversed()
	m.OrderLineFailed(entity.OrderKindSale)
	m.DriftDetected(3)

	n, err := testutil.GatherAndCount(reg, "kardex_movements_recorded_total")
	assert.NoError(t, err)
	assert.Equal(t, 3, n, "una serie por combinación tipo/truncado")

	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP kardex_products_with_drift Productos con drift en la última auditoría completa.
# TYPE kardex_products_with_drift gauge
kardex_products_with_drift 3
`), "kardex_products_with_drift"))
}

func TestPrometheus_DobleRegistroFalla(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
