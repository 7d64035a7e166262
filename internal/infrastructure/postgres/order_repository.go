package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// orderTables tablas de cada tipo de orden; compras y ventas tienen la misma forma.
type orderTables struct {
	orders       string
	lines        string
	counterparty string
}

var tablesByKind = map[entity.OrderKind]orderTables{
	entity.OrderKindPurchase: {orders: "purchase_orders", lines: "purchase_order_lines", counterparty: "supplier_id"},
	entity.OrderKindSale:     {orders: "sales_orders", lines: "sales_order_lines", counterparty: "customer_id"},
}

type orderRow struct {
	ID             string          `db:"id"`
	Number         string          `db:"number"`
	CounterpartyID string          `db:"counterparty_id"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	Tax            decimal.Decimal `db:"tax"`
	Total          decimal.Decimal `db:"total"`
	Status         string          `db:"status"`
	CreatedBy      string          `db:"created_by"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type orderLineRow struct {
	ID         string          `db:"id"`
	OrderID    string          `db:"order_id"`
	Position   int             `db:"position"`
	ProductID  string          `db:"product_id"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	Subtotal   decimal.Decimal `db:"subtotal"`
	Status     string          `db:"status"`
	MovementID *string         `db:"movement_id"`
	LastError  string          `db:"last_error"`
}

// OrderRepo órdenes de compra y venta con sus líneas sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

func tablesFor(kind entity.OrderKind) (orderTables, error) {
	t, ok := tablesByKind[kind]
	if !ok {
		return orderTables{}, fmt.Errorf("%w: tipo de orden %q", domain.ErrInvalidInput, kind)
	}
	return t, nil
}

// Create inserta la cabecera y todas las líneas. Llamar dentro de una tx.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	t, err := tablesFor(o.Kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert(t.orders).
		Columns("id", "number", t.counterparty, "subtotal", "tax", "total", "status", "created_by", "created_at", "updated_at").
		Values(o.ID, o.Number, o.CounterpartyID, o.Subtotal, o.Tax, o.Total, o.Status, o.CreatedBy, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}

	ins := psql.Insert(t.lines).
		Columns("id", "order_id", "position", "product_id", "quantity", "unit_price", "subtotal", "status", "movement_id", "last_error")
	for _, l := range o.Lines {
		ins = ins.Values(l.ID, o.ID, l.Position, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal, l.Status, l.MovementID, l.LastError)
	}
	query, args, err = ins.ToSql()
	if err != nil {
		return fmt.Errorf("build insert order lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: producto repetido en la orden", domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}

// GetByID obtiene la orden con sus líneas por posición; nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, kind entity.OrderKind, id string) (*entity.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.
		Select("id", "number", t.counterparty+" AS counterparty_id", "subtotal", "tax", "total", "status",
			"created_by", "created_at", "updated_at").
		From(t.orders).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get order: %w", err)
	}
	var row orderRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	query, args, err = psql.
		Select("id", "order_id", "position", "product_id", "quantity", "unit_price", "subtotal", "status",
			"movement_id", "last_error").
		From(t.lines).
		Where(sq.Eq{"order_id": id}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get order lines: %w", err)
	}
	var lines []orderLineRow
	if err := pgxscan.Select(ctx, r.q, &lines, query, args...); err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}

	o := &entity.Order{
		ID:             row.ID,
		Kind:           kind,
		Number:         row.Number,
		CounterpartyID: row.CounterpartyID,
		Subtotal:       row.Subtotal,
		Tax:            row.Tax,
		Total:          row.Total,
		Status:         row.Status,
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		Lines:          make([]*entity.OrderLine, 0, len(lines)),
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, &entity.OrderLine{
			ID:         l.ID,
			OrderID:    l.OrderID,
			Position:   l.Position,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal,
			Status:     l.Status,
			MovementID: l.MovementID,
			LastError:  l.LastError,
		})
	}
	return o, nil
}

// UpdateStatus persiste el estado derivado de la orden.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	t, err := tablesFor(o.Kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(t.orders).
		Set("status", o.Status).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order status: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// UpdateLine persiste estado, movimiento y último error de la línea.
func (r *OrderRepo) UpdateLine(ctx context.Context, kind entity.OrderKind, line *entity.OrderLine) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(t.lines).
		Set("status", line.Status).
		Set("movement_id", line.MovementID).
		Set("last_error", line.LastError).
		Where(sq.Eq{"id": line.ID, "order_id": line.OrderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order line: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResetLineByMovement devuelve a PENDIENTE la línea del movimiento y recalcula el estado de la orden.
func (r *OrderRepo) ResetLineByMovement(ctx context.Context, ref entity.OrderRef, movementID string) error {
	t, err := tablesFor(ref.Kind)
	if err != nil {
		return err
	}
	query, args, err := psql.Update(t.lines).
		Set("status", entity.LineStatusPending).
		Set("movement_id", nil).
		Set("last_error", "").
		Where(sq.Eq{"order_id": ref.ID, "movement_id": movementID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset order line: %w", err)
	}
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("reset order line: %w", err)
	}

	refresh := fmt.Sprintf(`
		UPDATE %[1]s o SET
			status = CASE
				WHEN s.applied = 0 THEN $2
				WHEN s.applied = s.total THEN $3
				ELSE $4
			END,
			updated_at = now()
		FROM (
			SELECT count(*) FILTER (WHERE status = $5) AS applied, count(*) AS total
			FROM %[2]s WHERE order_id = $1
		) s
		WHERE o.id = $1`, t.orders, t.lines)
	_, err = r.q.Exec(ctx, refresh, ref.ID,
		entity.OrderStatusPending, entity.OrderStatusApplied, entity.OrderStatusPartial, entity.LineStatusApplied)
	if err != nil {
		return fmt.Errorf("refresh order status: %w", err)
	}
	return nil
}

// Delete elimina la orden (las líneas caen en cascada). Falla con ErrConflict si aún tiene asientos.
func (r *OrderRepo) Delete(ctx context.Context, kind entity.OrderKind, id string) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.orders), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la orden aún tiene movimientos", domain.ErrConflict)
		}
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// NextSequence correlativo diario por tipo de orden (UPSERT ... RETURNING).
func (r *OrderRepo) NextSequence(ctx context.Context, kind entity.OrderKind, day time.Time) (int64, error) {
	const query = `
		INSERT INTO order_sequences (kind, day, last_value)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (kind, day) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, string(kind), day.Format("2006-01-02")).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return n, nil
}
