package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest alta de un ítem de inventario.
type CreateItemRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// ItemResponse ítem con su stock por bodega y agregado derivado.
type ItemResponse struct {
	ID              string           `json:"id"`
	SKU             string           `json:"sku"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	UnitCost        decimal.Decimal  `json:"unit_cost"`
	StockByLocation map[string]int64 `json:"stock_by_location"`
	TotalQuantity   int64            `json:"total_quantity"`
	CreatedAt       time.Time        `json:"created_at"`
}

// CreateLocationRequest alta de una bodega/sede.
type CreateLocationRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// LocationResponse bodega en respuestas.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
