package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

// InventoryHandler maneja kardex, stock y auditoría (protegido).
type InventoryHandler struct {
	recorder  *inventory.MovementRecorder
	reversal  *inventory.ReversalHandler
	validator *inventory.StockValidator
	queries   *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	recorder *inventory.MovementRecorder,
	reversal *inventory.ReversalHandler,
	validator *inventory.StockValidator,
	queries *inventory.QueryUseCase,
) *InventoryHandler {
	return &InventoryHandler{recorder: recorder, reversal: reversal, validator: validator, queries: queries}
}

// RecordMovement godoc
// @Summary      Registrar movimiento manual del kardex
// @Description  ENTRADA y SALIDA mueven la cantidad; AJUSTE fija el stock al valor de quantity.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "product_id, kind, quantity, unit_price, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Failure      504   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.recorder.Record(c.UserContext(), inventory.RecordInput{
		ProductID: strings.TrimSpace(in.ProductID),
		Kind:      entity.MovementKind(strings.ToUpper(strings.TrimSpace(in.Kind))),
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		Reason:    strings.TrimSpace(in.Reason),
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// ListMovements godoc
// @Summary      Consultar el kardex
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        kind        query  string  false  "ENTRADA, SALIDA o AJUSTE"
// @Param        from        query  string  false  "Desde (RFC3339, inclusivo)"
// @Param        to          query  string  false  "Hasta (RFC3339, exclusivo)"
// @Param        limit       query  int     false  "Máximo 500"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Kind:      entity.MovementKind(strings.ToUpper(c.Query("kind"))),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	list, err := h.queries.ListMovements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"items": dto.FromMovements(list),
		"page":  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	})
}

// ReverseMovement godoc
// @Summary      Revertir un movimiento
// @Description  Quita el asiento y recalcula los posteriores del mismo producto.
// @Tags         inventory
// @Security     Bearer
// @Param        id  path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) ReverseMovement(c *fiber.Ctx) error {
	if err := h.reversal.Reverse(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProduct godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id} [get]
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.queries.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromProduct(p))
}

// AuditProduct godoc
// @Summary      Auditar el stock de un producto contra su kardex
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.AuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/audit [get]
func (h *InventoryHandler) AuditProduct(c *fiber.Ctx) error {
	res, err := h.validator.AuditProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAuditResponse(res))
}

// AuditAll godoc
// @Summary      Auditoría completa de stock
// @Description  Devuelve solo los productos con drift o con la cadena de snapshots rota.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/audit [get]
func (h *InventoryHandler) AuditAll(c *fiber.Ctx) error {
	results, err := h.validator.AuditAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.AuditResponse, 0, len(results))
	for _, r := range results {
		out = append(out, toAuditResponse(r))
	}
	return c.JSON(fiber.Map{"total": len(out), "drifted": out})
}

// LowStock godoc
// @Summary      Productos bajo el stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.queries.ListLowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

func toAuditResponse(r inventory.AuditResult) dto.AuditResponse {
	out := dto.AuditResponse{
		ProductID: r.ProductID,
		SKU:       r.SKU,
		Expected:  r.Expected,
		Actual:    r.Actual,
		Drift:     r.Drift,
		Movements: r.Movements,
	}
	for _, b := range r.ChainBreaks {
		out.ChainBreaks = append(out.ChainBreaks, b.MovementID)
	}
	return out
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
