package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
)

// localError guarda en c.Locals el error no mapeado de la petición.
const localError = "error"

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// El primer match gana: los específicos antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrInvalidMovementKind, fiber.StatusBadRequest, "INVALID_MOVEMENT_KIND", "tipo de movimiento inválido"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado o inactivo"},
	{domain.ErrMovementNotFound, fiber.StatusNotFound, "MOVEMENT_NOT_FOUND", "movimiento no encontrado"},
	{domain.ErrOrderNotFound, fiber.StatusNotFound, "ORDER_NOT_FOUND", "orden no encontrada"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "registro duplicado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrMovementIndeterminate, fiber.StatusGatewayTimeout, "INDETERMINATE", "resultado incierto: verifique el kardex antes de reintentar"},
	{domain.ErrMovementPersistFailed, fiber.StatusServiceUnavailable, "PERSIST_FAILED", "no se pudo guardar el movimiento, reintente"},
}

// writeError traduce un error de dominio a respuesta HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var partial *domain.OrderLineApplyError
	if errors.As(err, &partial) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "ORDER_PARTIAL",
			Message: "la orden se aplicó parcialmente",
			Details: fiber.Map{
				"order_id":      partial.OrderID,
				"applied_lines": partial.AppliedLines,
				"failed_line":   partial.FailedLine,
				"cause":         partial.Cause.Error(),
			},
		})
	}
	var reversal *domain.OrderReversalError
	if errors.As(err, &reversal) {
		failed := make(map[string]string, len(reversal.Failed))
		for id, e := range reversal.Failed {
			failed[id] = e.Error()
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "ORDER_REVERSAL_PARTIAL",
			Message: "no se pudieron revertir todos los movimientos de la orden",
			Details: fiber.Map{
				"order_id": reversal.OrderID,
				"reversed": reversal.Reversed,
				"failed":   failed,
			},
		})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	// El detalle queda para RequestLogger; el cliente solo ve un mensaje genérico.
	c.Locals(localError, err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
