package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// RecordInput entrada para registrar un movimiento.
// En AJUSTE, Quantity es el stock objetivo; en ENTRADA/SALIDA es la cantidad a mover.
type RecordInput struct {
	ProductID string
	Kind      entity.MovementKind
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Reason    string
	OrderRef  *entity.OrderRef
	UserID    string
}

// RecordResult resultado de un registro dentro de una transacción.
type RecordResult struct {
	Movement *entity.Movement
	Clamped  bool // la SALIDA se truncó en cero
	Existing bool // ya existía un movimiento para la orden y producto; no se aplicó de nuevo
}

// MovementRecorder es el único escritor del kardex y del contador de stock.
// Cada registro lee el stock con bloqueo de fila, proyecta, inserta el asiento y actualiza el stock
// en una sola transacción.
type MovementRecorder struct {
	txRunner TxRunner
	policy   inventory.OversellPolicy
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewMovementRecorder construye el caso de uso.
func NewMovementRecorder(txRunner TxRunner, policy inventory.OversellPolicy, metrics Metrics, log *logger.Logger) *MovementRecorder {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &MovementRecorder{
		txRunner: txRunner,
		policy:   policy,
		metrics:  metrics,
		log:      log,
		now:      time.Now,
	}
}

// Record valida la entrada y registra el movimiento de forma atómica.
func (uc *MovementRecorder) Record(ctx context.Context, in RecordInput) (*entity.Movement, error) {
	if err := validateRecordInput(in); err != nil {
		return nil, err
	}
	var res RecordResult
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		_ repository.OrderRepository,
	) error {
		r, err := uc.RecordInTx(ctx, movRepo, stockRepo, in)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, classifyTxError(ctx, err)
	}
	uc.observe(res)
	return res.Movement, nil
}

// RecordInTx ejecuta el registro con repositorios de una transacción abierta por el llamador.
// No hace commit: el llamador decide el alcance atómico.
func (uc *MovementRecorder) RecordInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	in RecordInput,
) (RecordResult, error) {
	if err := validateRecordInput(in); err != nil {
		return RecordResult{}, err
	}
	// Bloquea la fila del producto: serializa lectores-escritores del mismo producto
	stock, err := stockRepo.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return RecordResult{}, err
	}
	if stock == nil || !stock.Active {
		return RecordResult{}, domain.ErrProductNotFound
	}

	if in.OrderRef != nil {
		prev, err := movRepo.FindByOrderAndProduct(ctx, *in.OrderRef, in.ProductID)
		if err != nil {
			return RecordResult{}, err
		}
		if prev != nil {
			return RecordResult{Movement: prev, Existing: true}, nil
		}
	}

	p, err := inventory.Project(stock.Quantity, in.Kind, in.Quantity, uc.policy)
	if err != nil {
		return RecordResult{}, err
	}

	mov := &entity.Movement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Kind:          in.Kind,
		Quantity:      p.Quantity,
		StockAnterior: stock.Quantity,
		StockNuevo:    p.StockNuevo,
		UnitPrice:     in.UnitPrice,
		Reason:        in.Reason,
		CreatedBy:     in.UserID,
		CreatedAt:     uc.now(),
	}
	mov.SetOrderRef(in.OrderRef)

	if err := movRepo.Create(ctx, mov); err != nil {
		return RecordResult{}, err
	}
	if err := stockRepo.Set(ctx, in.ProductID, p.StockNuevo); err != nil {
		return RecordResult{}, err
	}
	return RecordResult{Movement: mov, Clamped: p.Clamped}, nil
}

func (uc *MovementRecorder) observe(res RecordResult) {
	if res.Existing {
		uc.log.Debug().Str("movement_id", res.Movement.ID).Msg("movimiento ya registrado para la orden")
		return
	}
	m := res.Movement
	uc.metrics.MovementRecorded(m.Kind, res.Clamped)
	ev := uc.log.Info()
	if res.Clamped {
		ev = uc.log.Warn().Bool("sobreventa", true)
	}
	ev.Str("movement_id", m.ID).
		Str("product_id", m.ProductID).
		Str("kind", string(m.Kind)).
		Str("cantidad", m.Quantity.String()).
		Str("stock_anterior", m.StockAnterior.String()).
		Str("stock_nuevo", m.StockNuevo.String()).
		Str("user_id", m.CreatedBy).
		Msg("movimiento registrado")
}

func validateRecordInput(in RecordInput) error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if !in.Kind.Valid() {
		return domain.ErrInvalidMovementKind
	}
	if in.Quantity.IsNegative() || !inventory.WithinScale(in.Quantity) {
		return domain.ErrInvalidQuantity
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}

// businessErrors no se reclasifican: la transacción se descartó por una regla, no por el almacén.
var businessErrors = []error{
	domain.ErrInvalidInput,
	domain.ErrInvalidMovementKind,
	domain.ErrInvalidQuantity,
	domain.ErrProductNotFound,
	domain.ErrMovementNotFound,
	domain.ErrInsufficientStock,
}

// classifyTxError traduce un fallo de la transacción a la taxonomía del kardex.
// Si el contexto del llamador terminó, el commit pudo haber ocurrido: el resultado es indeterminado.
func classifyTxError(ctx context.Context, err error) error {
	for _, be := range businessErrors {
		if errors.Is(err, be) {
			return err
		}
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", domain.ErrMovementIndeterminate, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrMovementPersistFailed, err)
}
