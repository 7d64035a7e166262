package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

const defaultAuditPageSize = 200

// AuditResult comparación entre el stock almacenado y el recalculado desde el kardex.
type AuditResult struct {
	ProductID   string
	SKU         string
	Expected    decimal.Decimal
	Actual      decimal.Decimal
	Drift       decimal.Decimal // Actual - Expected
	Movements   int
	ChainBreaks []inventory.ChainBreak
}

// HasDrift indica si el contador diverge del kardex.
func (r AuditResult) HasDrift() bool {
	return !r.Drift.IsZero()
}

// Consistent sin drift y con la cadena de snapshots intacta.
func (r AuditResult) Consistent() bool {
	return !r.HasDrift() && len(r.ChainBreaks) == 0
}

// StockValidator auditor de solo lectura. Reporta desalineaciones; nunca corrige.
type StockValidator struct {
	reader   SnapshotReader
	pageSize int
	metrics  Metrics
	log      *logger.Logger
}

// NewStockValidator construye el auditor. pageSize <= 0 usa el valor por defecto.
func NewStockValidator(reader SnapshotReader, pageSize int, metrics Metrics, log *logger.Logger) *StockValidator {
	if pageSize <= 0 {
		pageSize = defaultAuditPageSize
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &StockValidator{reader: reader, pageSize: pageSize, metrics: metrics, log: log}
}

// AuditProduct recalcula el stock esperado de un producto y lo compara con el almacenado.
func (v *StockValidator) AuditProduct(ctx context.Context, productID string) (AuditResult, error) {
	if productID == "" {
		return AuditResult{}, domain.ErrInvalidInput
	}
	var res AuditResult
	err := v.reader.ReadOnly(ctx, func(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.MovementRepository,
	) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		res, err = audit(ctx, movRepo, p)
		return err
	})
	return res, err
}

// AuditAll recorre todos los productos (activos e inactivos) y devuelve los que tienen drift
// o cortes en la cadena de snapshots.
func (v *StockValidator) AuditAll(ctx context.Context) ([]AuditResult, error) {
	var drifted []AuditResult
	audited := 0
	for offset := 0; ; offset += v.pageSize {
		var page int
		err := v.reader.ReadOnly(ctx, func(
			ctx context.Context,
			productRepo repository.ProductRepository,
			movRepo repository.MovementRepository,
		) error {
			products, err := productRepo.List(ctx, v.pageSize, offset)
			if err != nil {
				return err
			}
			page = len(products)
			for _, p := range products {
				res, err := audit(ctx, movRepo, p)
				if err != nil {
					return err
				}
				if !res.Consistent() {
					drifted = append(drifted, res)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		audited += page
		if page < v.pageSize {
			break
		}
	}

	v.metrics.DriftDetected(len(drifted))
	for _, r := range drifted {
		v.log.Warn().
			Str("product_id", r.ProductID).
			Str("sku", r.SKU).
			Str("esperado", r.Expected.String()).
			Str("actual", r.Actual.String()).
			Str("drift", r.Drift.String()).
			Int("cortes_cadena", len(r.ChainBreaks)).
			Msg("drift de stock detectado")
	}
	v.log.Info().Int("productos", audited).Int("con_drift", len(drifted)).Msg("auditoría de stock finalizada")
	return drifted, nil
}

func audit(ctx context.Context, movRepo repository.MovementRepository, p *entity.Product) (AuditResult, error) {
	ledger, err := movRepo.ListByProduct(ctx, p.ID)
	if err != nil {
		return AuditResult{}, err
	}
	replay, err := inventory.Replay(ledger)
	if err != nil {
		return AuditResult{}, err
	}
	return AuditResult{
		ProductID:   p.ID,
		SKU:         p.SKU,
		Expected:    replay.Expected,
		Actual:      p.Stock,
		Drift:       p.Stock.Sub(replay.Expected),
		Movements:   replay.Movements,
		ChainBreaks: replay.ChainBreaks,
	}, nil
}
