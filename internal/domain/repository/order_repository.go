package repository

import (
	"context"
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// OrderRepository puerto de persistencia de órdenes de compra y venta con sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, kind entity.OrderKind, id string) (*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order) error
	UpdateLine(ctx context.Context, kind entity.OrderKind, line *entity.OrderLine) error
	// ResetLineByMovement devuelve a PENDIENTE la línea que apuntaba al movimiento revertido.
	ResetLineByMovement(ctx context.Context, ref entity.OrderRef, movementID string) error
	Delete(ctx context.Context, kind entity.OrderKind, id string) error
	// NextSequence siguiente correlativo del día para numerar órdenes.
	NextSequence(ctx context.Context, kind entity.OrderKind, day time.Time) (int64, error)
}
