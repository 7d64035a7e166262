package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
)

// orderKindByPath tipo de orden según el segmento de la ruta.
var orderKindByPath = map[string]entity.OrderKind{
	"compras": entity.OrderKindPurchase,
	"ventas":  entity.OrderKindSale,
}

// OrderHandler maneja órdenes de compra y venta (protegido).
type OrderHandler struct {
	uc *inventory.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *inventory.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra o venta
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string                  true  "compras | ventas"
// @Param        body  body  dto.CreateOrderRequest  true  "counterparty_id y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{kind} [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	kind, ok := orderKindByPath[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de orden desconocido"})
	}
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.CreateOrder(c.UserContext(), kind, in, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(order))
}

// Get godoc
// @Summary      Obtener orden con el estado de sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "compras | ventas"
// @Param        id    path  string  true  "ID de la orden"
// @Success      200   {object}  dto.OrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	kind, ok := orderKindByPath[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de orden desconocido"})
	}
	order, err := h.uc.GetOrder(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromOrder(order))
}

// Confirm godoc
// @Summary      Confirmar orden y aplicarla al kardex
// @Description  Reintentar tras un fallo parcial aplica solo las líneas pendientes.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "compras | ventas"
// @Param        id    path  string  true  "ID de la orden"
// @Success      200   {object}  dto.ConfirmOrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	kind, ok := orderKindByPath[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de orden desconocido"})
	}
	order, movements, err := h.uc.ConfirmOrder(c.UserContext(), kind, c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ConfirmOrderResponse{Order: dto.FromOrder(order), Movements: dto.FromMovements(movements)})
}

// Delete godoc
// @Summary      Eliminar orden revirtiendo sus movimientos
// @Tags         orders
// @Security     Bearer
// @Param        kind  path  string  true  "compras | ventas"
// @Param        id    path  string  true  "ID de la orden"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{kind}/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	kind, ok := orderKindByPath[c.Params("kind")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "tipo de orden desconocido"})
	}
	if err := h.uc.DeleteOrder(c.UserContext(), kind, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
