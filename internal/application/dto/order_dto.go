package dto

import (
	"time"

	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders/:kind.
type CreateOrderRequest struct {
	CounterpartyID string             `json:"counterparty_id"` // proveedor (compras) o cliente (ventas)
	Lines          []OrderLineRequest `json:"lines"`
}

// OrderLineRequest línea de la orden.
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderLineResponse línea con su estado de aplicación al kardex.
type OrderLineResponse struct {
	ID         string          `json:"id"`
	Position   int             `json:"position"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Status     string          `json:"status"`
	MovementID *string         `json:"movement_id,omitempty"`
	LastError  string          `json:"last_error,omitempty"`
}

// OrderResponse orden de compra o venta.
type OrderResponse struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	Number         string              `json:"number"`
	CounterpartyID string              `json:"counterparty_id"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Tax            decimal.Decimal     `json:"tax"`
	Total          decimal.Decimal     `json:"total"`
	Status         string              `json:"status"`
	Lines          []OrderLineResponse `json:"lines"`
	CreatedBy      string              `json:"created_by"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ConfirmOrderResponse resultado de confirmar (aplicar) una orden.
type ConfirmOrderResponse struct {
	Order     OrderResponse      `json:"order"`
	Movements []MovementResponse `json:"movements"`
}

// FromOrder convierte una orden a su representación HTTP.
func FromOrder(o *entity.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ID:         l.ID,
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
	return OrderResponse{
		ID:             o.ID,
		Kind:           string(o.Kind),
		Number:         o.Number,
		CounterpartyID: o.CounterpartyID,
		Subtotal:       o.Subtotal,
		Tax:            o.Tax,
		Total:          o.Total,
		Status:         o.Status,
		Lines:          lines,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
	}
}
