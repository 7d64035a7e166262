package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// SeedProduce carga un catálogo de frutas y verduras con stock cero, para el modo memory.
func SeedProduce(s *Store) {
	catalog := []struct {
		id, sku, name, unit string
		min                 int64
	}{
		{"00000000-0000-0000-0000-00000000a001", "PALTA-HASS", "Palta Hass", "KG", 40},
		{"00000000-0000-0000-0000-00000000a002", "TOMATE-ITA", "Tomate italiano", "KG", 60},
		{"00000000-0000-0000-0000-00000000a003", "PAPA-AMA", "Papa amarilla", "KG", 100},
		{"00000000-0000-0000-0000-00000000a004", "CEBOLLA-ROJ", "Cebolla roja", "KG", 80},
		{"00000000-0000-0000-0000-00000000a005", "LIMON-SUT", "Limón sutil", "KG", 30},
		{"00000000-0000-0000-0000-00000000a006", "PLATANO-ISL", "Plátano de la isla", "CAJA", 10},
	}
	for _, p := range catalog {
		s.AddProduct(&entity.Product{
			ID:          p.id,
			SKU:         p.sku,
			Name:        p.name,
			Stock:       decimal.Zero,
			MinStock:    decimal.NewFromInt(p.min),
			UnitMeasure: p.unit,
			Active:      true,
		})
	}
}
