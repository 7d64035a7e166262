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

var _ repository.MovementRepository = (*MovementRepo)(nil)

var movementColumns = []string{
	"id", "seq", "product_id", "kind", "quantity", "stock_anterior", "stock_nuevo", "unit_price",
	"reason", "purchase_order_id", "sales_order_id", "created_by", "created_at",
}

type movementRow struct {
	ID              string              `db:"id"`
	Seq             int64               `db:"seq"`
	ProductID       string              `db:"product_id"`
	Kind            string              `db:"kind"`
	Quantity        decimal.Decimal     `db:"quantity"`
	StockAnterior   decimal.Decimal     `db:"stock_anterior"`
	StockNuevo      decimal.Decimal     `db:"stock_nuevo"`
	UnitPrice       decimal.NullDecimal `db:"unit_price"`
	Reason          string              `db:"reason"`
	PurchaseOrderID *string             `db:"purchase_order_id"`
	SalesOrderID    *string             `db:"sales_order_id"`
	CreatedBy       string              `db:"created_by"`
	CreatedAt       time.Time           `db:"created_at"`
}

func (r movementRow) toEntity() *entity.Movement {
	m := &entity.Movement{
		ID:              r.ID,
		Seq:             r.Seq,
		ProductID:       r.ProductID,
		Kind:            entity.MovementKind(r.Kind),
		Quantity:        r.Quantity,
		StockAnterior:   r.StockAnterior,
		StockNuevo:      r.StockNuevo,
		Reason:          r.Reason,
		PurchaseOrderID: r.PurchaseOrderID,
		SalesOrderID:    r.SalesOrderID,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
	}
	if r.UnitPrice.Valid {
		price := r.UnitPrice.Decimal
		m.UnitPrice = &price
	}
	return m
}

// MovementRepo kardex sobre PostgreSQL (tabla inventory_movements).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta el asiento y completa Seq con el valor asignado por la BD.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	var price decimal.NullDecimal
	if m.UnitPrice != nil {
		price = decimal.NewNullDecimal(*m.UnitPrice)
	}
	query, args, err := psql.Insert("inventory_movements").
		Columns("id", "product_id", "kind", "quantity", "stock_anterior", "stock_nuevo", "unit_price",
			"reason", "purchase_order_id", "sales_order_id", "created_by", "created_at").
		Values(m.ID, m.ProductID, string(m.Kind), m.Quantity, m.StockAnterior, m.StockNuevo, price,
			m.Reason, m.PurchaseOrderID, m.SalesOrderID, m.CreatedBy, m.CreatedAt).
		Suffix("RETURNING seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert movement: %w", err)
	}
	if err := r.q.QueryRow(ctx, query, args...).Scan(&m.Seq); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referencia inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// FindByOrderAndProduct asiento de la orden para el producto; nil si aún no se aplicó.
func (r *MovementRepo) FindByOrderAndProduct(ctx context.Context, ref entity.OrderRef, productID string) (*entity.Movement, error) {
	return r.getOne(ctx, sq.Eq{orderColumn(ref.Kind): ref.ID, "product_id": productID})
}

// ListByOrder asientos originados por la orden, en orden de creación.
func (r *MovementRepo) ListByOrder(ctx context.Context, ref entity.OrderRef) ([]*entity.Movement, error) {
	return r.selectMovements(ctx, r.base().Where(sq.Eq{orderColumn(ref.Kind): ref.ID}))
}

// ListByProduct kardex completo del producto en orden de seq.
func (r *MovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.Movement, error) {
	return r.selectMovements(ctx, r.base().Where(sq.Eq{"product_id": productID}))
}

// List asientos filtrados para reportes. To es exclusivo.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	b := r.base()
	if f.ProductID != "" {
		b = b.Where(sq.Eq{"product_id": f.ProductID})
	}
	if f.Kind != "" {
		b = b.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"created_at": *f.To})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	return r.selectMovements(ctx, b)
}

// UpdateSnapshots reescribe cantidad y snapshots tras recalcular hacia adelante.
func (r *MovementRepo) UpdateSnapshots(ctx context.Context, m *entity.Movement) error {
	query, args, err := psql.Update("inventory_movements").
		Set("quantity", m.Quantity).
		Set("stock_anterior", m.StockAnterior).
		Set("stock_nuevo", m.StockNuevo).
		Where(sq.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update movement: %w", err)
	}
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update movement snapshots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

// Delete elimina el asiento.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotFound
	}
	return nil
}

func (r *MovementRepo) base() sq.SelectBuilder {
	return psql.Select(movementColumns...).From("inventory_movements").OrderBy("seq")
}

func (r *MovementRepo) getOne(ctx context.Context, where sq.Eq) (*entity.Movement, error) {
	query, args, err := psql.Select(movementColumns...).From("inventory_movements").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get movement: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return row.toEntity(), nil
}

func (r *MovementRepo) selectMovements(ctx context.Context, b sq.SelectBuilder) ([]*entity.Movement, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	out := make([]*entity.Movement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// orderColumn columna del asiento que referencia a la orden según su tipo.
func orderColumn(kind entity.OrderKind) string {
	if kind == entity.OrderKindPurchase {
		return "purchase_order_id"
	}
	return "sales_order_id"
}
