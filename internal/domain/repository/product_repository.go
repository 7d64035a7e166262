package repository

import (
	"context"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// ProductRepository puerto de lectura de productos. No expone escritura de stock:
// el contador solo se modifica a través de StockRepository dentro de un TxRunner.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// List incluye productos inactivos (la auditoría también los revisa).
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListBelowMinimum productos activos con stock < stock mínimo.
	ListBelowMinimum(ctx context.Context) ([]*entity.Product, error)
}
