package entity

import "github.com/shopspring/decimal"

// Stock es la lectura bloqueada (SELECT FOR UPDATE) del contador de un producto dentro de una transacción del kardex.
type Stock struct {
	ProductID string
	Active    bool
	Quantity  decimal.Decimal
}
