package inventory

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Es el único camino para obtener un StockRepository: el contador de stock solo se escribe aquí.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error) error
}

// SnapshotReader ejecuta lecturas sobre una instantánea consistente (producto y kardex a la vez).
type SnapshotReader interface {
	ReadOnly(ctx context.Context, fn func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error) error
}

// Metrics contadores operativos del kardex.
type Metrics interface {
	MovementRecorded(kind entity.MovementKind, clamped bool)
	MovementReversed()
	OrderLineFailed(kind entity.OrderKind)
	DriftDetected(products int)
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) MovementRecorded(entity.MovementKind, bool) {}
func (NopMetrics) MovementReversed()                          {}
func (NopMetrics) OrderLineFailed(entity.OrderKind)           {}
func (NopMetrics) DriftDetected(int)                          {}
