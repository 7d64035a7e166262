package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{"id", "sku", "name", "stock", "min_stock", "unit_measure", "active", "created_at", "updated_at"}

type productRow struct {
	ID          string          `db:"id"`
	SKU         string          `db:"sku"`
	Name        string          `db:"name"`
	Stock       decimal.Decimal `db:"stock"`
	MinStock    decimal.Decimal `db:"min_stock"`
	UnitMeasure string          `db:"unit_measure"`
	Active      bool            `db:"active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:          r.ID,
		SKU:         r.SKU,
		Name:        r.Name,
		Stock:       r.Stock,
		MinStock:    r.MinStock,
		UnitMeasure: r.UnitMeasure,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ProductRepo lectura de productos sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query, args, err := psql.Select(productColumns...).From("products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get product: %w", err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toEntity(), nil
}

// List lista productos por SKU, incluidos los inactivos.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	b := psql.Select(productColumns...).From("products").OrderBy("sku")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	return r.selectProducts(ctx, b)
}

// ListBelowMinimum productos activos con stock < min_stock.
func (r *ProductRepo) ListBelowMinimum(ctx context.Context) ([]*entity.Product, error) {
	b := psql.Select(productColumns...).From("products").
		Where(sq.Eq{"active": true}).
		Where("stock < min_stock").
		OrderBy("(min_stock - stock) DESC", "sku")
	return r.selectProducts(ctx, b)
}

func (r *ProductRepo) selectProducts(ctx context.Context, b sq.SelectBuilder) ([]*entity.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list products: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
