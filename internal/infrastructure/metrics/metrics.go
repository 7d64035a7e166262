// Package metrics publica los contadores del kardex en Prometheus.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

var _ inventory.Metrics = (*Prometheus)(nil)

// Prometheus implementa inventory.Metrics.
type Prometheus struct {
	movements  *prometheus.CounterVec
	reversals  prometheus.Counter
	lineFails  *prometheus.CounterVec
	drifted    prometheus.Gauge
	lastAudits prometheus.Gauge
}

// New registra los colectores en reg (prometheus.DefaultRegisterer en producción).
func New(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kardex",
			Name:      "movements_recorded_total",
			Help:      "Movimientos registrados por tipo y si la salida se truncó en cero.",
		}, []string{"kind", "clamped"}),
		reversals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kardex",
			Name:      "movements_reversed_total",
			Help:      "Movimientos revertidos.",
		}),
		lineFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kardex",
			Name:      "order_line_failures_total",
			Help:      "Líneas de orden que no pudieron aplicarse al kardex.",
		}, []string{"order_kind"}),
		drifted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kardex",
			Name:      "products_with_drift",
			Help:      "Productos con drift en la última auditoría completa.",
		}),
		lastAudits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kardex",
			Name:      "last_audit_timestamp_seconds",
			Help:      "Momento de la última auditoría completa.",
		}),
	}
	reg.MustRegister(m.movements, m.reversals, m.lineFails, m.drifted, m.lastAudits)
	return m
}

func (m *Prometheus) MovementRecorded(kind entity.MovementKind, clamped bool) {
	m.movements.WithLabelValues(string(kind), strconv.FormatBool(clamped)).Inc()
}

func (m *Prometheus) MovementReversed() {
	m.reversals.Inc()
}

func (m *Prometheus) OrderLineFailed(kind entity.OrderKind) {
	m.lineFails.WithLabelValues(string(kind)).Inc()
}

func (m *Prometheus) DriftDetected(products int) {
	m.drifted.Set(float64(products))
	m.lastAudits.SetToCurrentTime()
}
