package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// ReversalHandler deshace el efecto de un movimiento cuando se elimina su origen.
//
// Garantía: se puede revertir cualquier movimiento, no solo el más reciente. Dentro de una
// transacción con la fila del producto bloqueada se quita el asiento y se recalculan hacia
// adelante todos los asientos posteriores desde el stockAnterior del revertido.
type ReversalHandler struct {
	txRunner TxRunner
	movRepo  repository.MovementRepository
	metrics  Metrics
	log      *logger.Logger
}

// NewReversalHandler construye el caso de uso.
func NewReversalHandler(txRunner TxRunner, movRepo repository.MovementRepository, metrics Metrics, log *logger.Logger) *ReversalHandler {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReversalHandler{txRunner: txRunner, movRepo: movRepo, metrics: metrics, log: log}
}

// Reverse revierte un movimiento y corrige el stock del producto en el mismo paso atómico.
func (h *ReversalHandler) Reverse(ctx context.Context, movementID string) error {
	if movementID == "" {
		return domain.ErrInvalidInput
	}
	target, err := h.movRepo.GetByID(ctx, movementID)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMovementPersistFailed, err)
	}
	if target == nil {
		return domain.ErrMovementNotFound
	}

	var rewritten int
	var final string
	err = h.txRunner.Run(ctx, func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		n, stockNuevo, err := h.reverseInTx(ctx, movRepo, stockRepo, orderRepo, target.ProductID, movementID)
		if err != nil {
			return err
		}
		rewritten, final = n, stockNuevo
		return nil
	})
	if err != nil {
		return classifyTxError(ctx, err)
	}

	h.metrics.MovementReversed()
	h.log.Info().
		Str("movement_id", movementID).
		Str("product_id", target.ProductID).
		Str("kind", string(target.Kind)).
		Int("recalculados", rewritten).
		Str("stock_nuevo", final).
		Msg("movimiento revertido")
	return nil
}

func (h *ReversalHandler) reverseInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	productID, movementID string,
) (int, string, error) {
	stock, err := stockRepo.GetForUpdate(ctx, productID)
	if err != nil {
		return 0, "", err
	}
	// Un producto inactivo igual admite reversiones; solo debe existir.
	if stock == nil {
		return 0, "", domain.ErrProductNotFound
	}
	ledger, err := movRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, "", err
	}
	idx := -1
	for i, m := range ledger {
		if m.ID == movementID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Revertido por otra transacción entre la lectura inicial y el bloqueo.
		return 0, "", domain.ErrMovementNotFound
	}
	if last := ledger[len(ledger)-1]; !last.StockNuevo.Equal(stock.Quantity) {
		h.log.Warn().
			Str("product_id", productID).
			Str("stock", stock.Quantity.String()).
			Str("ultimo_stock_nuevo", last.StockNuevo.String()).
			Msg("stock desalineado con el kardex antes de revertir")
	}

	target := ledger[idx]
	current := target.StockAnterior
	rewritten := 0
	for _, m := range ledger[idx+1:] {
		p, err := inventory.Reapply(m, current)
		if err != nil {
			return 0, "", err
		}
		if !m.StockAnterior.Equal(current) || !m.StockNuevo.Equal(p.StockNuevo) || !m.Quantity.Equal(p.Quantity) {
			m.StockAnterior = current
			m.StockNuevo = p.StockNuevo
			m.Quantity = p.Quantity
			if err := movRepo.UpdateSnapshots(ctx, m); err != nil {
				return 0, "", err
			}
			rewritten++
		}
		current = p.StockNuevo
	}

	// La línea suelta la referencia antes de borrar el asiento (FK line.movement_id).
	if ref := target.OrderRef(); ref != nil {
		if err := orderRepo.ResetLineByMovement(ctx, *ref, target.ID); err != nil {
			return 0, "", err
		}
	}
	if err := movRepo.Delete(ctx, target.ID); err != nil {
		return 0, "", err
	}
	if err := stockRepo.Set(ctx, productID, current); err != nil {
		return 0, "", err
	}
	return rewritten, current.String(), nil
}

// ReverseOrder revierte todos los movimientos originados por la orden, cada uno en su propia
// transacción y del más reciente al más antiguo. Los fallos se registran y se devuelven juntos.
func (h *ReversalHandler) ReverseOrder(ctx context.Context, order *entity.Order) error {
	if order == nil || order.ID == "" {
		return domain.ErrInvalidInput
	}
	movements, err := h.movRepo.ListByOrder(ctx, *order.Ref())
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMovementPersistFailed, err)
	}

	var reversed []string
	failed := make(map[string]error)
	for i := len(movements) - 1; i >= 0; i-- {
		m := movements[i]
		if err := h.Reverse(ctx, m.ID); err != nil {
			h.log.Error().Err(err).
				Str("order_id", order.ID).
				Str("movement_id", m.ID).
				Str("product_id", m.ProductID).
				Msg("no se pudo revertir movimiento de la orden")
			failed[m.ID] = err
			continue
		}
		reversed = append(reversed, m.ID)
	}
	if len(failed) > 0 {
		return &domain.OrderReversalError{OrderID: order.ID, Reversed: reversed, Failed: failed}
	}
	return nil
}
