// Package memory implementa los puertos del kardex en memoria. Sirve a las pruebas y al
// modo STORAGE_DRIVER=memory; un único mutex serializa las transacciones.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner       = (*Store)(nil)
	_ inventory.SnapshotReader = (*Store)(nil)
)

// Fault permite inyectar fallos de almacén en las pruebas. op es la operación
// ("movement.create", "stock.set", "order.update_line", ...) y key el id afectado.
type Fault func(op, key string) error

type state struct {
	products  map[string]*entity.Product
	movements []*entity.Movement
	orders    map[string]*entity.Order // clave kind/id
	sequences map[string]int64         // clave kind/yyyymmdd
	nextSeq   int64
}

func (s *state) clone() *state {
	c := &state{
		products:  make(map[string]*entity.Product, len(s.products)),
		movements: make([]*entity.Movement, len(s.movements)),
		orders:    make(map[string]*entity.Order, len(s.orders)),
		sequences: make(map[string]int64, len(s.sequences)),
		nextSeq:   s.nextSeq,
	}
	for k, p := range s.products {
		c.products[k] = copyProduct(p)
	}
	for i, m := range s.movements {
		c.movements[i] = copyMovement(m)
	}
	for k, o := range s.orders {
		c.orders[k] = copyOrder(o)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// Store almacén en memoria con transacciones todo-o-nada.
type Store struct {
	mu    sync.Mutex
	st    *state
	fault Fault
	now   func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		st: &state{
			products:  make(map[string]*entity.Product),
			orders:    make(map[string]*entity.Order),
			sequences: make(map[string]int64),
		},
		now: time.Now,
	}
}

// SetFault instala (o quita con nil) el inyector de fallos.
func (s *Store) SetFault(f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// AddProduct da de alta un producto del catálogo con su stock inicial.
func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyProduct(p)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	c.UpdatedAt = c.CreatedAt
	s.st.products[c.ID] = c
}

// OverwriteStock escribe el contador sin pasar por el kardex. Solo para reproducir drift.
func (s *Store) OverwriteStock(productID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.st.products[productID]; ok {
		p.Stock = qty
	}
}

// Run ejecuta fn con el almacén bloqueado. Si fn falla, o el contexto terminó antes del
// commit, el estado vuelve a la copia tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.MovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()
	err := fn(ctx, &movementRepo{s: s, tx: true}, &stockRepo{s: s}, &orderRepo{s: s, tx: true})
	if err == nil {
		if cerr := ctx.Err(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}
	if err != nil {
		s.st = backup
		return err
	}
	return nil
}

// ReadOnly ejecuta fn sobre una vista consistente: ninguna escritura entra mientras dura.
func (s *Store) ReadOnly(ctx context.Context, fn func(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.MovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &productRepo{s: s, tx: true}, &movementRepo{s: s, tx: true})
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Movements repositorio del kardex fuera de transacción.
func (s *Store) Movements() repository.MovementRepository { return &movementRepo{s: s} }

// Orders repositorio de órdenes fuera de transacción.
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s: s} }

// do ejecuta f con el lock tomado salvo que ya lo tenga la transacción en curso.
func (s *Store) do(tx bool, f func() error) error {
	if !tx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return f()
}

func (s *Store) inject(op, key string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, key)
}

func (s *Store) sortedLedger(productID string) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range s.st.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	sortMovements(out)
	return out
}

func sortMovements(list []*entity.Movement) {
	sort.Slice(list, func(i, j int) bool { return list[i].Seq < list[j].Seq })
}

func orderKey(kind entity.OrderKind, id string) string { return string(kind) + "/" + id }

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	return &c
}

func copyOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Lines = make([]*entity.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}
