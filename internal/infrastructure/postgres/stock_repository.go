package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo contador de stock (columna products.stock). Solo se construye dentro de TxRunner.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock sobre la tx.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate lee el stock y bloquea la fila del producto hasta el fin de la tx.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	const query = `SELECT id, active, stock FROM products WHERE id = $1 FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Active, &s.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Set escribe el nuevo stock del producto.
func (r *StockRepo) Set(ctx context.Context, productID string, quantity decimal.Decimal) error {
	const query = `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, productID, quantity)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: stock negativo", domain.ErrInvalidQuantity)
		}
		return fmt.Errorf("set stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
