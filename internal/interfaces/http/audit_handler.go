package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// AuditHandler expone el escaneo y la reparación del log de traslados (protegido).
type AuditHandler struct {
	uc *audit.UseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *audit.UseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Scan godoc
// @Summary      Escanear traslados con movimientos faltantes
// @Description  Compara lo registrado en el log contra los contadores de cada
// @Description  orden de traslado. Solo lectura: nunca modifica datos.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AuditReport
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/audit/transfers [get]
func (h *AuditHandler) Scan(c *fiber.Ctx) error {
	report, err := h.uc.ScanForGaps(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// Repair godoc
// @Summary      Sintetizar los movimientos faltantes detectados
// @Description  Inserta las contrapartes faltantes en un solo lote. Nunca toca
// @Description  cantidades de stock: solo completa el rastro histórico.
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RepairResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/audit/transfers/repair [post]
func (h *AuditHandler) Repair(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	report, err := h.uc.ScanForGaps(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	repaired, err := h.uc.Repair(c.Context(), report, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RepairResponse{RepairedRecords: repaired})
}
