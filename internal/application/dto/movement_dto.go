package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementResponse registro de movimiento en respuestas.
type MovementResponse struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	LocationID      string          `json:"location_id"`
	Type            string          `json:"type"`
	Quantity        int64           `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	OrderCode       string          `json:"order_code,omitempty"`
	RelatedLocation string          `json:"related_location,omitempty"`
	OccurredAt      time.Time       `json:"occurred_at"`
	CreatedBy       string          `json:"created_by,omitempty"`
}

// KardexEntryResponse movimiento con saldo corriente tras aplicarlo.
type KardexEntryResponse struct {
	Movement MovementResponse `json:"movement"`
	Balance  int64            `json:"balance"`
}

// KardexResponse historial con saldos reconstruidos de un ítem/bodega.
type KardexResponse struct {
	ItemID       string                `json:"item_id"`
	LocationID   string                `json:"location_id,omitempty"`
	StartBalance int64                 `json:"start_balance"`
	Current      int64                 `json:"current"`
	Entries      []KardexEntryResponse `json:"entries"`
}

// AdjustmentRequest ajuste manual con signo (merma, hallazgo, corrección).
type AdjustmentRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"` // con signo: positivo suma, negativo resta
	Reason     string `json:"reason"`
}

// CountRequest conteo físico: la cantidad contada reemplaza a la registrada
// y la diferencia queda en el log como movimiento AUDIT.
type CountRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	CountedQty int64  `json:"counted_qty"`
	Notes      string `json:"notes"`
}

// CountResponse resultado de la reconciliación por conteo.
type CountResponse struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Previous   int64  `json:"previous"`
	Counted    int64  `json:"counted"`
	Delta      int64  `json:"delta"`
	Total      int64  `json:"total"` // nuevo agregado del ítem
}
