package inventory_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domaininv "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/infrastructure/memory"
)

const testUser = "00000000-0000-0000-0000-0000000000aa"

type fixture struct {
	store     *memory.Store
	metrics   *spyMetrics
	recorder  *inventory.MovementRecorder
	bridge    *inventory.OrderBridge
	reversal  *inventory.ReversalHandler
	validator *inventory.StockValidator
	orders    *inventory.OrderUseCase
	queries   *inventory.QueryUseCase
}

func newFixture(t *testing.T, policy domaininv.OversellPolicy) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := &spyMetrics{}
	rec := inventory.NewMovementRecorder(store, policy, m, nil)
	rev := inventory.NewReversalHandler(store, store.Movements(), m, nil)
	bridge := inventory.NewOrderBridge(store, rec, store.Orders(), store.Movements(), m, nil)
	return &fixture{
		store:     store,
		metrics:   m,
		recorder:  rec,
		bridge:    bridge,
		reversal:  rev,
		validator: inventory.NewStockValidator(store, 2, m, nil),
		orders: inventory.NewOrderUseCase(store, store.Products(), store.Orders(), bridge, rev,
			decimal.RequireFromString("0.18"), nil),
		queries: inventory.NewQueryUseCase(store.Products(), store.Movements()),
	}
}

func (f *fixture) addProduct(id, sku string, stock int64) {
	f.store.AddProduct(&entity.Product{
		ID:          id,
		SKU:         sku,
		Name:        "Producto " + sku,
		Stock:       decimal.NewFromInt(stock),
		MinStock:    decimal.NewFromInt(10),
		UnitMeasure: "KG",
		Active:      true,
	})
}

// openProduct da de alta el producto en cero y registra su saldo inicial como ENTRADA,
// así el kardex explica todo el stock.
func (f *fixture) openProduct(t *testing.T, id, sku string, stock int64) {
	t.Helper()
	f.addProduct(id, sku, 0)
	if stock > 0 {
		f.record(t, id, entity.MovementEntrada, stock)
	}
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.queries.GetProduct(t.Context(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) requireConsistent(t *testing.T, id string) {
	t.Helper()
	res, err := f.validator.AuditProduct(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, res.Consistent(), "esperado=%s actual=%s cortes=%d", res.Expected, res.Actual, len(res.ChainBreaks))
}

func (f *fixture) record(t *testing.T, productID string, kind entity.MovementKind, qty int64) *entity.Movement {
	t.Helper()
	m, err := f.recorder.Record(t.Context(), inventory.RecordInput{
		ProductID: productID,
		Kind:      kind,
		Quantity:  decimal.NewFromInt(qty),
		UserID:    testUser,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) createOrder(t *testing.T, kind entity.OrderKind, lines ...dto.OrderLineRequest) *entity.Order {
	t.Helper()
	o, err := f.orders.CreateOrder(t.Context(), kind, dto.CreateOrderRequest{
		CounterpartyID: "cliente-1",
		Lines:          lines,
	}, testUser)
	require.NoError(t, err)
	return o
}

func line(productID string, qty int64) dto.OrderLineRequest {
	return dto.OrderLineRequest{
		ProductID: productID,
		Quantity:  decimal.NewFromInt(qty),
		UnitPrice: decimal.RequireFromString("2.50"),
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		append([]any{"esperado %s, obtenido %s", want, got.String()}, msgAndArgs...)...)
}

type spyMetrics struct {
	mu          sync.Mutex
	recorded    map[entity.MovementKind]int
	clamped     int
	reversed    int
	lineFailed  int
	lastDrifted int
}

func (s *spyMetrics) MovementRecorded(kind entity.MovementKind, clamped bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorded == nil {
		s.recorded = make(map[entity.MovementKind]int)
	}
	s.recorded[kind]++
	if clamped {
		s.clamped++
	}
}

func (s *spyMetrics) MovementReversed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reversed++
}

func (s *spyMetrics) OrderLineFailed(entity.OrderKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineFailed++
}

func (s *spyMetrics) DriftDetected(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDrifted = n
}
