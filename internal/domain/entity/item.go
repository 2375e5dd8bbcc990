package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del inventario (herramienta, repuesto, equipo)
// con su stock por bodega. TotalQuantity es derivado: siempre se recalcula como
// la suma del mapa por bodega al escribir, nunca se incrementa por separado.
type Item struct {
	ID              string
	SKU             string // código único
	Name            string
	Description     string
	UnitCost        decimal.Decimal // costo unitario para valorizar movimientos y bajas
	StockByLocation map[string]int64
	TotalQuantity   int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuantityAt cantidad actual en una bodega (0 si no hay fila).
func (i *Item) QuantityAt(locationID string) int64 {
	if i.StockByLocation == nil {
		return 0
	}
	return i.StockByLocation[locationID]
}

// SumStock suma del stock por bodega. Es la única fuente de verdad del agregado.
func (i *Item) SumStock() int64 {
	var total int64
	for _, q := range i.StockByLocation {
		total += q
	}
	return total
}
