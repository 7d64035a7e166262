package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

var tracer = otel.Tracer("kardex/postgres")

var (
	_ inventory.TxRunner       = (*TxRunner)(nil)
	_ inventory.SnapshotReader = (*TxRunner)(nil)
)

// TxOptions parámetros de las transacciones del kardex.
type TxOptions struct {
	// Retries reintentos ante 40001/40P01/55P03; 0 desactiva.
	Retries uint64
	// LockTimeout espera máxima por el bloqueo de fila del producto.
	LockTimeout time.Duration
	// RetryBase primer intervalo del backoff exponencial.
	RetryBase time.Duration
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL con repos atados a la tx.
type TxRunner struct {
	pool *pgxpool.Pool
	opts TxOptions
	log  *logger.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions, log *logger.Logger) *TxRunner {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 20 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TxRunner{pool: pool, opts: opts, log: log}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn y hace Commit o Rollback.
// Los conflictos de concurrencia repiten fn completa en una transacción nueva.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
) error) error {
	ctx, span := tracer.Start(ctx, "kardex.tx", trace.WithAttributes(
		attribute.String("tx.isolation", string(pgx.ReadCommitted)),
	))
	defer span.End()

	attempt := 0
	backoff := retry.WithMaxRetries(r.opts.Retries, retry.NewExponential(r.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := r.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx pgx.Tx) error {
			return fn(ctx, NewMovementRepository(tx), NewStockRepository(tx), NewOrderRepository(tx))
		})
		if err != nil && isRetryable(err) {
			r.log.Warn().Err(err).Int("intento", attempt).Msg("conflicto de concurrencia, reintentando transacción")
			return retry.RetryableError(err)
		}
		return err
	})
	span.SetAttributes(attribute.Int("tx.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ReadOnly ejecuta fn en una transacción REPEATABLE READ de solo lectura: productos y kardex
// se leen sobre la misma instantánea.
func (r *TxRunner) ReadOnly(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
) error) error {
	ctx, span := tracer.Start(ctx, "kardex.tx.readonly", trace.WithAttributes(
		attribute.String("tx.isolation", string(pgx.RepeatableRead)),
	))
	defer span.End()

	err := r.runOnce(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewProductRepository(tx), NewMovementRepository(tx))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback con contexto propio: debe completarse aunque el del llamador haya vencido.
	defer func() { _ = tx.Rollback(context.Background()) }()

	if r.opts.LockTimeout > 0 && opts.AccessMode != pgx.ReadOnly {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.opts.LockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
