package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderKind distingue órdenes de compra y de venta.
type OrderKind string

const (
	OrderKindPurchase OrderKind = "COMPRA"
	OrderKindSale     OrderKind = "VENTA"
)

// movementKindByOrder es la única tabla que decide el sentido del stock de una orden.
var movementKindByOrder = map[OrderKind]MovementKind{
	OrderKindPurchase: MovementEntrada,
	OrderKindSale:     MovementSalida,
}

// MovementKindFor devuelve el tipo de movimiento que genera una orden del tipo dado.
func MovementKindFor(kind OrderKind) (MovementKind, bool) {
	mk, ok := movementKindByOrder[kind]
	return mk, ok
}

// Valid indica si el tipo de orden es conocido.
func (k OrderKind) Valid() bool {
	_, ok := movementKindByOrder[k]
	return ok
}

// NumberPrefix prefijo del número legible de la orden.
func (k OrderKind) NumberPrefix() string {
	if k == OrderKindPurchase {
		return "OC"
	}
	return "OV"
}

// OrderRef referencia a la orden que originó un movimiento.
type OrderRef struct {
	Kind OrderKind
	ID   string
}

// Estados de la orden.
const (
	OrderStatusPending = "PENDIENTE" // ninguna línea aplicada
	OrderStatusPartial = "PARCIAL"   // algunas líneas aplicadas, otra falló
	OrderStatusApplied = "APLICADA"  // todas las líneas tienen su movimiento
)

// Estados de línea: PENDIENTE -> APLICADO | FALLIDO; FALLIDO -> APLICADO al reintentar;
// APLICADO -> PENDIENTE cuando se revierte su movimiento.
const (
	LineStatusPending = "PENDIENTE"
	LineStatusApplied = "APLICADO"
	LineStatusFailed  = "FALLIDO"
)

// Order orden de compra (proveedor) o venta (cliente).
type Order struct {
	ID             string
	Kind           OrderKind
	Number         string // OC-20250131-0001
	CounterpartyID string // proveedor o cliente
	Lines          []*OrderLine
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	Status         string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// OrderLine línea de la orden con su estado de aplicación al kardex.
type OrderLine struct {
	ID         string
	OrderID    string
	Position   int
	ProductID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Status     string
	MovementID *string
	LastError  string
}

// Ref devuelve la referencia usada en los movimientos de la orden.
func (o *Order) Ref() *OrderRef {
	return &OrderRef{Kind: o.Kind, ID: o.ID}
}

// Recalculate recalcula subtotales de línea, subtotal, impuesto (IGV) y total.
func (o *Order) Recalculate(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, l := range o.Lines {
		l.Subtotal = l.Quantity.Mul(l.UnitPrice).Round(2)
		subtotal = subtotal.Add(l.Subtotal)
	}
	o.Subtotal = subtotal
	o.Tax = subtotal.Mul(taxRate).Round(2)
	o.Total = o.Subtotal.Add(o.Tax)
}

// RefreshStatus deriva el estado de la orden a partir de sus líneas.
func (o *Order) RefreshStatus() {
	applied := 0
	for _, l := range o.Lines {
		if l.Status == LineStatusApplied {
			applied++
		}
	}
	switch {
	case len(o.Lines) > 0 && applied == len(o.Lines):
		o.Status = OrderStatusApplied
	case applied > 0:
		o.Status = OrderStatusPartial
	default:
		o.Status = OrderStatusPending
	}
}
