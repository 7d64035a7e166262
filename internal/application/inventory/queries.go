package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

const (
	defaultMovementLimit = 50
	maxMovementLimit     = 500
)

// QueryUseCase lecturas para reportes: kardex filtrado, stock de producto y faltantes.
type QueryUseCase struct {
	productRepo repository.ProductRepository
	movRepo     repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(productRepo repository.ProductRepository, movRepo repository.MovementRepository) *QueryUseCase {
	return &QueryUseCase{productRepo: productRepo, movRepo: movRepo}
}

// ListMovements lista asientos por producto, tipo y rango de fechas, en orden de creación.
func (uc *QueryUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, domain.ErrInvalidMovementKind
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domain.ErrInvalidInput
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultMovementLimit
	case f.Limit > maxMovementLimit:
		f.Limit = maxMovementLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.movRepo.List(ctx, f)
}

// GetProduct devuelve el producto con su stock actual, incluso si está inactivo.
func (uc *QueryUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// ListLowStock productos activos bajo su stock mínimo, mayor déficit primero.
func (uc *QueryUseCase) ListLowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	products, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(products))
	for _, p := range products {
		if !p.Active || !p.BelowMinimum() {
			continue
		}
		out = append(out, dto.LowStockDTO{
			ProductID:   p.ID,
			SKU:         p.SKU,
			Name:        p.Name,
			Stock:       p.Stock,
			MinStock:    p.MinStock,
			Deficit:     p.MinStock.Sub(p.Stock),
			UnitMeasure: p.UnitMeasure,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deficit.Equal(out[j].Deficit) {
			return out[i].Deficit.GreaterThan(out[j].Deficit)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}
