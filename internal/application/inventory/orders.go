package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// OrderUseCase alta, consulta, confirmación y eliminación de órdenes de compra y venta.
// La confirmación delega en OrderBridge y la eliminación en ReversalHandler.
type OrderUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	bridge      *OrderBridge
	reversal    *ReversalHandler
	taxRate     decimal.Decimal
	log         *logger.Logger
	now         func() time.Time
}

// NewOrderUseCase construye el caso de uso. taxRate es la tasa de IGV (0.18 = 18%).
func NewOrderUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	bridge *OrderBridge,
	reversal *ReversalHandler,
	taxRate decimal.Decimal,
	log *logger.Logger,
) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		bridge:      bridge,
		reversal:    reversal,
		taxRate:     taxRate,
		log:         log,
		now:         time.Now,
	}
}

// CreateOrder valida las líneas, calcula totales y numera la orden. La orden nace PENDIENTE;
// el stock no cambia hasta ConfirmOrder.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, kind entity.OrderKind, in dto.CreateOrderRequest, userID string) (*entity.Order, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if in.CounterpartyID == "" || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	now := uc.now()
	order := &entity.Order{
		ID:             uuid.New().String(),
		Kind:           kind,
		CounterpartyID: in.CounterpartyID,
		Status:         entity.OrderStatusPending,
		CreatedBy:      userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	seen := make(map[string]struct{}, len(in.Lines))
	for i, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: línea %d", domain.ErrInvalidInput, i+1)
		}
		if !inventory.WithinScale(l.Quantity) {
			return nil, fmt.Errorf("%w: línea %d", domain.ErrInvalidQuantity, i+1)
		}
		// Orden + producto es la llave de idempotencia del kardex
		if _, dup := seen[l.ProductID]; dup {
			return nil, fmt.Errorf("%w: producto %s repetido en la orden", domain.ErrDuplicate, l.ProductID)
		}
		seen[l.ProductID] = struct{}{}

		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.Active {
			return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, l.ProductID)
		}
		order.Lines = append(order.Lines, &entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			Position:  i + 1,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Status:    entity.LineStatusPending,
		})
	}
	order.Recalculate(uc.taxRate)

	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		seq, err := orderRepo.NextSequence(ctx, kind, now)
		if err != nil {
			return err
		}
		order.Number = fmt.Sprintf("%s-%s-%04d", kind.NumberPrefix(), now.Format("20060102"), seq)
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("crear orden: %w", err)
	}

	uc.log.Info().
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("kind", string(kind)).
		Int("lineas", len(order.Lines)).
		Str("total", order.Total.String()).
		Msg("orden creada")
	return order, nil
}

// GetOrder devuelve la orden con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, kind entity.OrderKind, id string) (*entity.Order, error) {
	if !kind.Valid() || id == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ConfirmOrder aplica la orden al kardex. Ante un fallo parcial devuelve también la orden
// con el estado de cada línea para que el llamador sepa qué quedó aplicado.
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, kind entity.OrderKind, id, userID string) (*entity.Order, []*entity.Movement, error) {
	order, err := uc.GetOrder(ctx, kind, id)
	if err != nil {
		return nil, nil, err
	}
	movements, err := uc.bridge.ApplyOrder(ctx, order, userID)
	return order, movements, err
}

// DeleteOrder revierte los movimientos de la orden y la elimina. Si alguna reversión falla
// la orden se conserva para reintentar.
func (uc *OrderUseCase) DeleteOrder(ctx context.Context, kind entity.OrderKind, id string) error {
	order, err := uc.GetOrder(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := uc.reversal.ReverseOrder(ctx, order); err != nil {
		return err
	}
	err = uc.txRunner.Run(ctx, func(
		ctx context.Context,
		_ repository.MovementRepository,
		_ repository.StockRepository,
		orderRepo repository.OrderRepository,
	) error {
		return orderRepo.Delete(ctx, kind, id)
	})
	if err != nil {
		return fmt.Errorf("eliminar orden: %w", err)
	}
	uc.log.Info().Str("order_id", id).Str("number", order.Number).Msg("orden eliminada")
	return nil
}
