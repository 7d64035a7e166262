package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Recorder  *inventory.MovementRecorder
	Reversal  *inventory.ReversalHandler
	Validator *inventory.StockValidator
	Orders    *inventory.OrderUseCase
	Queries   *inventory.QueryUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	everyone := RequireRole(RoleAdmin, RoleAlmacenero, RoleVendedor, RoleAuditor)
	warehouse := RequireRole(RoleAdmin, RoleAlmacenero)
	auditors := RequireRole(RoleAdmin, RoleAuditor)

	// Kardex y stock
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Recorder, deps.Reversal, deps.Validator, deps.Queries)
	inv.Post("/movements", warehouse, invHandler.RecordMovement)
	inv.Get("/movements", everyone, invHandler.ListMovements)
	inv.Delete("/movements/:id", RequireRole(RoleAdmin), invHandler.ReverseMovement)
	inv.Get("/products/:id", everyone, invHandler.GetProduct)
	inv.Get("/products/:id/audit", auditors, invHandler.AuditProduct)
	inv.Get("/audit", auditors, invHandler.AuditAll)
	inv.Get("/low-stock", everyone, invHandler.LowStock)

	// Órdenes: /api/orders/compras y /api/orders/ventas
	orders := api.Group("/orders/:kind")
	orderHandler := NewOrderHandler(deps.Orders)
	writers := RequireRole(RoleAdmin, RoleAlmacenero, RoleVendedor)
	orders.Post("/", writers, orderHandler.Create)
	orders.Get("/:id", everyone, orderHandler.Get)
	orders.Post("/:id/confirm", writers, orderHandler.Confirm)
	orders.Delete("/:id", RequireRole(RoleAdmin), orderHandler.Delete)
}
