package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// OrderBridge traduce las líneas de una orden confirmada a movimientos del kardex:
// compras generan ENTRADA y ventas SALIDA (entity.MovementKindFor).
//
// Cada línea es atómica por sí sola (movimiento + stock + estado de la línea), pero no hay
// atomicidad entre líneas: si la línea N falla, las anteriores quedan aplicadas y la orden
// queda PARCIAL. Reintentar es seguro: las líneas APLICADO se saltan y el recorder
// detecta movimientos previos por orden + producto.
type OrderBridge struct {
	txRunner  TxRunner
	recorder  *MovementRecorder
	orderRepo repository.OrderRepository
	movRepo   repository.MovementRepository
	metrics   Metrics
	log       *logger.Logger
}

// NewOrderBridge construye el puente orden-movimiento.
func NewOrderBridge(
	txRunner TxRunner,
	recorder *MovementRecorder,
	orderRepo repository.OrderRepository,
	movRepo repository.MovementRepository,
	metrics Metrics,
	log *logger.Logger,
) *OrderBridge {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OrderBridge{
		txRunner:  txRunner,
		recorder:  recorder,
		orderRepo: orderRepo,
		movRepo:   movRepo,
		metrics:   metrics,
		log:       log,
	}
}

// ApplyOrder aplica las líneas pendientes de la orden en orden de posición y devuelve
// los movimientos de todas las líneas aplicadas (incluidas las de invocaciones previas).
func (b *OrderBridge) ApplyOrder(ctx context.Context, order *entity.Order, userID string) ([]*entity.Movement, error) {
	if order == nil || order.ID == "" || len(order.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	kind, ok := entity.MovementKindFor(order.Kind)
	if !ok {
		return nil, domain.ErrInvalidInput
	}

	lines := make([]*entity.OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Position < lines[j].Position })

	var movements []*entity.Movement
	for _, line := range lines {
		if line.Status == entity.LineStatusApplied && line.MovementID != nil {
			mov, err := b.movRepo.GetByID(ctx, *line.MovementID)
			if err != nil {
				return movements, fmt.Errorf("leer movimiento de la línea %s: %w", line.ID, err)
			}
			if mov != nil {
				movements = append(movements, mov)
				continue
			}
			// La línea apunta a un movimiento que ya no existe: se vuelve a aplicar.
		}

		mov, err := b.applyLine(ctx, order, kind, line, userID)
		if err != nil {
			return movements, b.lineFailed(ctx, order, line, err)
		}
		movements = append(movements, mov)
	}

	order.RefreshStatus()
	if err := b.orderRepo.UpdateStatus(ctx, order); err != nil {
		return movements, fmt.Errorf("actualizar estado de la orden: %w", err)
	}
	b.log.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("kind", string(order.Kind)).
		Int("movimientos", len(movements)).
		Msg("orden aplicada al kardex")
	return movements, nil
}

// applyLine registra el movimiento de una línea y la marca APLICADO en la misma transacción.
func (b *OrderBridge) applyLine(
	ctx context.Context,
	order *entity.Order,
	kind entity.MovementKind,
	line *entity.OrderLine,
	userID string,
) (*entity.Movement, error) {
	price := line.UnitPrice
	in := RecordInput{
		ProductID: line.ProductID,
		Kind:      kind,
		Quantity:  line.Quantity,
		UnitPrice: &price,
		Reason:    fmt.Sprintf("%s %s", order.Kind, order.Number),
		OrderRef:  order.Ref(),
		UserID:    userID,
	}
	var res RecordResult
	err := b.txRunner.Run(ctx, func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		r, err := b.recorder.RecordInTx(ctx, movRepo, stockRepo, in)
		if err != nil {
			return err
		}
		applied := *line
		applied.Status = entity.LineStatusApplied
		applied.MovementID = &r.Movement.ID
		applied.LastError = ""
		if err := orderRepo.UpdateLine(ctx, order.Kind, &applied); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, classifyTxError(ctx, err)
	}
	b.recorder.observe(res)
	line.Status = entity.LineStatusApplied
	line.MovementID = &res.Movement.ID
	line.LastError = ""
	return res.Movement, nil
}

// lineFailed deja la línea FALLIDO (salvo resultado indeterminado), actualiza el estado
// de la orden y distingue fallo limpio de fallo parcial.
func (b *OrderBridge) lineFailed(ctx context.Context, order *entity.Order, line *entity.OrderLine, cause error) error {
	b.metrics.OrderLineFailed(order.Kind)
	b.log.Error().Err(cause).
		Str("order_id", order.ID).
		Str("line_id", line.ID).
		Str("product_id", line.ProductID).
		Msg("falló la aplicación de la línea")

	// Indeterminado: el commit pudo ocurrir; no se toca la línea para no contradecir al almacén.
	if !errors.Is(cause, domain.ErrMovementIndeterminate) {
		line.Status = entity.LineStatusFailed
		line.MovementID = nil
		line.LastError = cause.Error()
		if err := b.orderRepo.UpdateLine(ctx, order.Kind, line); err != nil {
			b.log.Error().Err(err).Str("line_id", line.ID).Msg("no se pudo marcar la línea como fallida")
		}
	}

	var applied []string
	for _, l := range order.Lines {
		if l.Status == entity.LineStatusApplied {
			applied = append(applied, l.ID)
		}
	}
	order.RefreshStatus()
	if err := b.orderRepo.UpdateStatus(ctx, order); err != nil {
		b.log.Error().Err(err).Str("order_id", order.ID).Msg("no se pudo actualizar el estado de la orden")
	}

	if len(applied) == 0 {
		return cause
	}
	return &domain.OrderLineApplyError{
		OrderID:      order.ID,
		AppliedLines: applied,
		FailedLine:   line.ID,
		Cause:        cause,
	}
}
