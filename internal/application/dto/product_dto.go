package dto

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductResponse lectura de un producto con su stock actual.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	UnitMeasure string          `json:"unit_measure"`
	Active      bool            `json:"active"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FromProduct convierte un producto a su representación HTTP.
func FromProduct(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		UnitMeasure: p.UnitMeasure,
		Active:      p.Active,
		UpdatedAt:   p.UpdatedAt,
	}
}
