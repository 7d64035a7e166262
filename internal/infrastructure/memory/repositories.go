package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

type productRepo struct {
	s  *Store
	tx bool
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.do(r.tx, func() error {
		if p, ok := r.s.st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r *productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.do(r.tx, func() error {
		all := make([]*entity.Product, 0, len(r.s.st.products))
		for _, p := range r.s.st.products {
			all = append(all, p)
		}
		sortProducts(all)
		for _, p := range page(all, limit, offset) {
			out = append(out, copyProduct(p))
		}
		return nil
	})
	return out, err
}

func (r *productRepo) ListBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.s.do(r.tx, func() error {
		for _, p := range r.s.st.products {
			if p.Active && p.BelowMinimum() {
				out = append(out, copyProduct(p))
			}
		}
		sortProducts(out)
		return nil
	})
	return out, err
}

// stockRepo solo existe dentro de Run: el lock ya está tomado.
type stockRepo struct {
	s *Store
}

func (r *stockRepo) GetForUpdate(_ context.Context, productID string) (*entity.Stock, error) {
	if err := r.s.inject("stock.get", productID); err != nil {
		return nil, err
	}
	p, ok := r.s.st.products[productID]
	if !ok {
		return nil, nil
	}
	return &entity.Stock{ProductID: p.ID, Active: p.Active, Quantity: p.Stock}, nil
}

func (r *stockRepo) Set(_ context.Context, productID string, quantity decimal.Decimal) error {
	if err := r.s.inject("stock.set", productID); err != nil {
		return err
	}
	p, ok := r.s.st.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Stock = quantity
	p.UpdatedAt = r.s.now()
	return nil
}

type movementRepo struct {
	s  *Store
	tx bool
}

func (r *movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.s.do(r.tx, func() error {
		if err := r.s.inject("movement.create", m.ProductID); err != nil {
			return err
		}
		if ref := m.OrderRef(); ref != nil {
			for _, e := range r.s.st.movements {
				if e.ProductID == m.ProductID && sameRef(e.OrderRef(), ref) {
					return domain.ErrDuplicate
				}
			}
		}
		r.s.st.nextSeq++
		m.Seq = r.s.st.nextSeq
		r.s.st.movements = append(r.s.st.movements, copyMovement(m))
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.s.do(r.tx, func() error {
		for _, m := range r.s.st.movements {
			if m.ID == id {
				out = copyMovement(m)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) FindByOrderAndProduct(_ context.Context, ref entity.OrderRef, productID string) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.s.do(r.tx, func() error {
		for _, m := range r.s.st.movements {
			if m.ProductID == productID && sameRef(m.OrderRef(), &ref) {
				out = copyMovement(m)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByOrder(_ context.Context, ref entity.OrderRef) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.s.do(r.tx, func() error {
		for _, m := range r.s.st.movements {
			if sameRef(m.OrderRef(), &ref) {
				out = append(out, copyMovement(m))
			}
		}
		sortMovements(out)
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.s.do(r.tx, func() error {
		for _, m := range r.s.sortedLedger(productID) {
			out = append(out, copyMovement(m))
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var out []*entity.Movement
	err := r.s.do(r.tx, func() error {
		var all []*entity.Movement
		for _, m := range r.s.st.movements {
			if matches(m, f) {
				all = append(all, m)
			}
		}
		sortMovements(all)
		for _, m := range page(all, f.Limit, f.Offset) {
			out = append(out, copyMovement(m))
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) UpdateSnapshots(_ context.Context, m *entity.Movement) error {
	return r.s.do(r.tx, func() error {
		if err := r.s.inject("movement.update", m.ID); err != nil {
			return err
		}
		for _, e := range r.s.st.movements {
			if e.ID == m.ID {
				e.Quantity = m.Quantity
				e.StockAnterior = m.StockAnterior
				e.StockNuevo = m.StockNuevo
				return nil
			}
		}
		return domain.ErrMovementNotFound
	})
}

func (r *movementRepo) Delete(_ context.Context, id string) error {
	return r.s.do(r.tx, func() error {
		if err := r.s.inject("movement.delete", id); err != nil {
			return err
		}
		for i, e := range r.s.st.movements {
			if e.ID == id {
				r.s.st.movements = append(r.s.st.movements[:i:i], r.s.st.movements[i+1:]...)
				return nil
			}
		}
		return domain.ErrMovementNotFound
	})
}

type orderRepo struct {
	s  *Store
	tx bool
}

func (r *orderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.s.do(r.tx, func() error {
		k := orderKey(o.Kind, o.ID)
		if _, ok := r.s.st.orders[k]; ok {
			return domain.ErrDuplicate
		}
		r.s.st.orders[k] = copyOrder(o)
		return nil
	})
}

func (r *orderRepo) GetByID(_ context.Context, kind entity.OrderKind, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.s.do(r.tx, func() error {
		if o, ok := r.s.st.orders[orderKey(kind, id)]; ok {
			out = copyOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *orderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	return r.s.do(r.tx, func() error {
		stored, ok := r.s.st.orders[orderKey(o.Kind, o.ID)]
		if !ok {
			return domain.ErrOrderNotFound
		}
		stored.Status = o.Status
		stored.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *orderRepo) UpdateLine(_ context.Context, kind entity.OrderKind, line *entity.OrderLine) error {
	return r.s.do(r.tx, func() error {
		if err := r.s.inject("order.update_line", line.ID); err != nil {
			return err
		}
		stored, ok := r.s.st.orders[orderKey(kind, line.OrderID)]
		if !ok {
			return domain.ErrOrderNotFound
		}
		for _, l := range stored.Lines {
			if l.ID == line.ID {
				l.Status = line.Status
				l.MovementID = line.MovementID
				l.LastError = line.LastError
				return nil
			}
		}
		return domain.ErrNotFound
	})
}

func (r *orderRepo) ResetLineByMovement(_ context.Context, ref entity.OrderRef, movementID string) error {
	return r.s.do(r.tx, func() error {
		stored, ok := r.s.st.orders[orderKey(ref.Kind, ref.ID)]
		if !ok {
			return nil
		}
		for _, l := range stored.Lines {
			if l.MovementID != nil && *l.MovementID == movementID {
				l.Status = entity.LineStatusPending
				l.MovementID = nil
				l.LastError = ""
			}
		}
		stored.RefreshStatus()
		stored.UpdatedAt = r.s.now()
		return nil
	})
}

func (r *orderRepo) Delete(_ context.Context, kind entity.OrderKind, id string) error {
	return r.s.do(r.tx, func() error {
		k := orderKey(kind, id)
		if _, ok := r.s.st.orders[k]; !ok {
			return domain.ErrOrderNotFound
		}
		ref := entity.OrderRef{Kind: kind, ID: id}
		for _, m := range r.s.st.movements {
			if sameRef(m.OrderRef(), &ref) {
				return domain.ErrConflict
			}
		}
		delete(r.s.st.orders, k)
		return nil
	})
}

func (r *orderRepo) NextSequence(_ context.Context, kind entity.OrderKind, day time.Time) (int64, error) {
	var n int64
	err := r.s.do(r.tx, func() error {
		k := string(kind) + "/" + day.Format("20060102")
		r.s.st.sequences[k]++
		n = r.s.st.sequences[k]
		return nil
	})
	return n, err
}

func sameRef(a, b *entity.OrderRef) bool {
	return a != nil && b != nil && a.Kind == b.Kind && a.ID == b.ID
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if f.From != nil && m.CreatedAt.Before(*f.From) {
		return false
	}
	// To es exclusivo
	if f.To != nil && !m.CreatedAt.Before(*f.To) {
		return false
	}
	return true
}

func sortProducts(list []*entity.Product) {
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}
