package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/orders"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC       *usecase.ItemUseCase
	LocationUC   *usecase.LocationUseCase
	OrderUC      *orders.UseCase
	AdjustmentUC *ledger.AdjustmentUseCase
	HistoryUC    *ledger.HistoryUseCase
	AuditUC      *audit.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Salud (público)
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items (protegido)
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)

	// Locations (protegido)
	locations := protected.Group("/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)

	// Orders (protegido): ciclo de vida completo
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/dispatch", orderHandler.Dispatch)
	ordersGroup.Post("/:id/receive", orderHandler.Receive)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)

	// Inventory (protegido): ajustes, conteos e historial
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustmentUC, deps.HistoryUC)
	invGroup.Post("/adjustments", inventoryHandler.RegisterAdjustment)
	invGroup.Post("/counts", inventoryHandler.ReconcileCount)
	invGroup.Get("/items/:item_id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/items/:item_id/kardex", inventoryHandler.GetKardex)

	// Audit (protegido): escaneo y reparación del log de traslados
	auditGroup := protected.Group("/audit")
	auditHandler := NewAuditHandler(deps.AuditUC)
	auditGroup.Get("/transfers", auditHandler.Scan)
	auditGroup.Post("/transfers/repair", auditHandler.Repair)
}
