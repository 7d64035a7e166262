// Package bootstrap arma el almacén y los casos de uso del kardex a partir de la configuración.
// Lo comparten el servidor HTTP y el comando de auditoría.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	domaininv "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/kardex-api/pkg/config"
	"github.com/jhoicas/kardex-api/pkg/logger"
)

// Backend puertos de persistencia según STORAGE_DRIVER.
type Backend struct {
	TxRunner  inventory.TxRunner
	Reader    inventory.SnapshotReader
	Products  repository.ProductRepository
	Movements repository.MovementRepository
	Orders    repository.OrderRepository
	Close     func()
}

// OpenBackend abre PostgreSQL (pool + TxRunner) o un almacén en memoria con catálogo de ejemplo.
func OpenBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	switch cfg.App.StorageDriver {
	case "memory":
		store := memory.NewStore()
		memory.SeedProduce(store)
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return &Backend{
			TxRunner:  store,
			Reader:    store,
			Products:  store.Products(),
			Movements: store.Movements(),
			Orders:    store.Orders(),
			Close:     func() {},
		}, nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		tx := postgres.NewTxRunner(pool, postgres.TxOptions{
			Retries:     cfg.Inventory.TxRetries,
			LockTimeout: cfg.Inventory.LockTimeout,
			RetryBase:   25 * time.Millisecond,
		}, log.Named("tx"))
		return &Backend{
			TxRunner:  tx,
			Reader:    tx,
			Products:  postgres.NewProductRepository(pool),
			Movements: postgres.NewMovementRepository(pool),
			Orders:    postgres.NewOrderRepository(pool),
			Close:     pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.App.StorageDriver)
}

// Services casos de uso del kardex listos para el router o la CLI.
type Services struct {
	Recorder  *inventory.MovementRecorder
	Reversal  *inventory.ReversalHandler
	Bridge    *inventory.OrderBridge
	Validator *inventory.StockValidator
	Orders    *inventory.OrderUseCase
	Queries   *inventory.QueryUseCase
}

// NewServices construye los casos de uso sobre el backend. metrics puede ser nil.
func NewServices(cfg *config.Config, b *Backend, metrics inventory.Metrics, log *logger.Logger) (*Services, error) {
	policy, err := domaininv.ParseOversellPolicy(cfg.Inventory.OversellPolicy)
	if err != nil {
		return nil, err
	}
	recorder := inventory.NewMovementRecorder(b.TxRunner, policy, metrics, log.Named("recorder"))
	reversal := inventory.NewReversalHandler(b.TxRunner, b.Movements, metrics, log.Named("reversal"))
	bridge := inventory.NewOrderBridge(b.TxRunner, recorder, b.Orders, b.Movements, metrics, log.Named("bridge"))
	return &Services{
		Recorder:  recorder,
		Reversal:  reversal,
		Bridge:    bridge,
		Validator: inventory.NewStockValidator(b.Reader, cfg.Inventory.AuditPageSize, metrics, log.Named("validator")),
		Orders: inventory.NewOrderUseCase(b.TxRunner, b.Products, b.Orders, bridge, reversal,
			cfg.Inventory.TaxRate, log.Named("orders")),
		Queries: inventory.NewQueryUseCase(b.Products, b.Movements),
	}, nil
}
