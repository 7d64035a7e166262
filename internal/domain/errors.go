package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Motor de inventario (kardex).
	ErrProductNotFound       = errors.New("producto no encontrado o inactivo")
	ErrMovementNotFound      = errors.New("movimiento no encontrado")
	ErrOrderNotFound         = errors.New("orden no encontrada")
	ErrInvalidMovementKind   = errors.New("tipo de movimiento inválido")
	ErrInvalidQuantity       = errors.New("cantidad inválida")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrMovementPersistFailed = errors.New("no se pudo persistir el movimiento")
	ErrMovementIndeterminate = errors.New("resultado del movimiento indeterminado")
	ErrOrderLineApplyFailed  = errors.New("aplicación parcial de líneas de la orden")
	ErrOrderReversalFailed   = errors.New("reversión parcial de movimientos de la orden")
)

// OrderLineApplyError indica que una orden quedó en estado mixto: algunas líneas
// aplicadas y una fallida. Se compara con ErrOrderLineApplyFailed vía errors.Is.
type OrderLineApplyError struct {
	OrderID      string
	AppliedLines []string
	FailedLine   string
	Cause        error
}

func (e *OrderLineApplyError) Error() string {
	return fmt.Sprintf("orden %s: línea %s falló tras aplicar %d línea(s): %v",
		e.OrderID, e.FailedLine, len(e.AppliedLines), e.Cause)
}

func (e *OrderLineApplyError) Unwrap() []error {
	return []error{ErrOrderLineApplyFailed, e.Cause}
}

// OrderReversalError lista los movimientos que no se pudieron revertir al eliminar una orden.
type OrderReversalError struct {
	OrderID  string
	Reversed []string
	Failed   map[string]error
}

func (e *OrderReversalError) Error() string {
	ids := make([]string, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("orden %s: %d movimiento(s) revertidos, fallaron: %s",
		e.OrderID, len(e.Reversed), strings.Join(ids, ", "))
}

func (e *OrderReversalError) Unwrap() error { return ErrOrderReversalFailed }
