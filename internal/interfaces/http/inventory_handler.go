package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
)

// InventoryHandler maneja ajustes manuales, conteos físicos e historial (protegido).
type InventoryHandler struct {
	adjustments *ledger.AdjustmentUseCase
	history     *ledger.HistoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjustments *ledger.AdjustmentUseCase, history *ledger.HistoryUseCase) *InventoryHandler {
	return &InventoryHandler{adjustments: adjustments, history: history}
}

// RegisterAdjustment godoc
// @Summary      Registrar un ajuste manual con signo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "item_id, location_id, quantity (con signo), reason"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.adjustments.RegisterAdjustment(c.Context(), userID, in); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "ajuste registrado"})
}

// ReconcileCount godoc
// @Summary      Reconciliar un conteo físico
// @Description  La cantidad contada reemplaza a la registrada; la diferencia
// @Description  queda en el log como movimiento AUDIT.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CountRequest  true  "item_id, location_id, counted_qty"
// @Success      200   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/counts [post]
func (h *InventoryHandler) ReconcileCount(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CountRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.adjustments.ReconcileCount(c.Context(), userID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      path   string  true   "ID del ítem"
// @Param        location_id  query  string  false  "Filtrar por bodega. Vacío = todas."
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{item_id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	list, err := h.history.ListMovements(c.Context(), c.Params("item_id"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// GetKardex godoc
// @Summary      Kardex de un ítem con saldos reconstruidos
// @Description  Deriva el saldo inicial del saldo actual menos el efecto neto
// @Description  del historial y recorre los movimientos hacia adelante.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      path   string  true   "ID del ítem"
// @Param        location_id  query  string  false  "Bodega. Vacío = agregado global."
// @Success      200  {object}  dto.KardexResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{item_id}/kardex [get]
func (h *InventoryHandler) GetKardex(c *fiber.Ctx) error {
	out, err := h.history.Kardex(c.Context(), c.Params("item_id"), c.Query("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
