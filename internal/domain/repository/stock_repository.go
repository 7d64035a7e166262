package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository acceso al contador de stock de un producto.
// Solo se obtiene dentro de una transacción del kardex (TxRunner).
type StockRepository interface {
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE). Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	Set(ctx context.Context, productID string, quantity decimal.Decimal) error
}
