package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del kardex.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementEntrada MovementKind = "ENTRADA" // ingreso (compra, recepción)
	MovementSalida  MovementKind = "SALIDA"  // egreso (venta, merma)
	MovementAjuste  MovementKind = "AJUSTE"  // corrección absoluta a un stock objetivo
)

// Valid indica si el tipo es uno de los reconocidos.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementEntrada, MovementSalida, MovementAjuste:
		return true
	}
	return false
}

// Movement es un asiento del kardex. Los snapshots StockAnterior/StockNuevo encadenan
// los asientos de un producto en orden causal.
type Movement struct {
	ID              string
	Seq             int64 // orden de inserción; define el orden del kardex
	ProductID       string
	Kind            MovementKind
	Quantity        decimal.Decimal // cantidad tal como la presentó el llamador; en AJUSTE, el delta implícito
	StockAnterior   decimal.Decimal
	StockNuevo      decimal.Decimal
	UnitPrice       *decimal.Decimal
	Reason          string
	PurchaseOrderID *string
	SalesOrderID    *string
	CreatedBy       string
	CreatedAt       time.Time
}

// OrderRef devuelve la orden que originó el movimiento, o nil si fue manual.
func (m *Movement) OrderRef() *OrderRef {
	switch {
	case m.PurchaseOrderID != nil:
		return &OrderRef{Kind: OrderKindPurchase, ID: *m.PurchaseOrderID}
	case m.SalesOrderID != nil:
		return &OrderRef{Kind: OrderKindSale, ID: *m.SalesOrderID}
	}
	return nil
}

// SetOrderRef asigna la referencia de orden (compra XOR venta).
func (m *Movement) SetOrderRef(ref *OrderRef) {
	m.PurchaseOrderID, m.SalesOrderID = nil, nil
	if ref == nil {
		return
	}
	id := ref.ID
	if ref.Kind == OrderKindPurchase {
		m.PurchaseOrderID = &id
	} else {
		m.SalesOrderID = &id
	}
}
