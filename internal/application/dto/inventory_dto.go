package dto

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RecordMovementRequest body para POST /api/inventory/movements (ajustes manuales).
// En AJUSTE, quantity es el stock objetivo.
type RecordMovementRequest struct {
	ProductID string           `json:"product_id"`
	Kind      string           `json:"kind"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

// MovementResponse asiento del kardex.
type MovementResponse struct {
	ID              string           `json:"id"`
	ProductID       string           `json:"product_id"`
	Kind            string           `json:"kind"`
	Quantity        decimal.Decimal  `json:"quantity"`
	StockAnterior   decimal.Decimal  `json:"stock_anterior"`
	StockNuevo      decimal.Decimal  `json:"stock_nuevo"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
	Reason          string           `json:"reason,omitempty"`
	PurchaseOrderID *string          `json:"purchase_order_id,omitempty"`
	SalesOrderID    *string          `json:"sales_order_id,omitempty"`
	CreatedBy       string           `json:"created_by"`
	CreatedAt       time.Time        `json:"created_at"`
}

// FromMovement convierte un asiento a su representación HTTP.
func FromMovement(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		Kind:            string(m.Kind),
		Quantity:        m.Quantity,
		StockAnterior:   m.StockAnterior,
		StockNuevo:      m.StockNuevo,
		UnitPrice:       m.UnitPrice,
		Reason:          m.Reason,
		PurchaseOrderID: m.PurchaseOrderID,
		SalesOrderID:    m.SalesOrderID,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

// FromMovements convierte una lista de asientos.
func FromMovements(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMovement(m))
	}
	return out
}

// AuditResponse resultado de la auditoría de un producto.
type AuditResponse struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Expected    decimal.Decimal `json:"expected"`
	Actual      decimal.Decimal `json:"actual"`
	Drift       decimal.Decimal `json:"drift"`
	Movements   int             `json:"movements"`
	ChainBreaks []string        `json:"chain_breaks,omitempty"` // IDs de asientos con stock_anterior desalineado
}

// LowStockDTO producto por debajo de su stock mínimo.
type LowStockDTO struct {
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Deficit     decimal.Decimal `json:"deficit"` // MinStock - Stock
	UnitMeasure string          `json:"unit_measure"`
}
