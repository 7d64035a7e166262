package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// MovementFilter filtros para consultas de movimientos (reportes).
type MovementFilter struct {
	ProductID string
	Kind      entity.MovementKind
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository puerto de persistencia del kardex.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// FindByOrderAndProduct es la llave de idempotencia de la aplicación de órdenes.
	FindByOrderAndProduct(ctx context.Context, ref entity.OrderRef, productID string) (*entity.Movement, error)
	ListByOrder(ctx context.Context, ref entity.OrderRef) ([]*entity.Movement, error)
	// ListByProduct devuelve el kardex del producto en orden de seq, asignado bajo el bloqueo de la fila.
	ListByProduct(ctx context.Context, productID string) ([]*entity.Movement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)
	// UpdateSnapshots reescribe cantidad y snapshots al recalcular hacia adelante tras una reversión.
	UpdateSnapshots(ctx context.Context, movement *entity.Movement) error
	Delete(ctx context.Context, id string) error
}
