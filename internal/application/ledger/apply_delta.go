// Package ledger implementa la mutación transaccional del stock por bodega.
package ledger

import (
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ApplyDelta aplica un delta al stock de un ítem en una bodega y recalcula el
// agregado sumando el mapa completo. Debe llamarse solo dentro de una
// transacción que ya leyó el ítem; el agregado nunca se incrementa por
// separado para impedir que derive del log que lo justifica.
// Devuelve el nuevo agregado.
func ApplyDelta(itemRepo repository.ItemRepository, item *entity.Item, locationID string, delta int64) (int64, error) {
	if item == nil || locationID == "" {
		return 0, domain.ErrInvalidInput
	}
	current := item.QuantityAt(locationID)
	next := current + delta
	if next < 0 {
		// El llamador debió validar antes; esto corta la transacción sin escribir.
		return 0, &domain.StockShortageError{Shortages: []domain.StockShortage{{
			ItemID:     item.ID,
			LocationID: locationID,
			Requested:  -delta,
			Available:  current,
		}}}
	}
	if item.StockByLocation == nil {
		item.StockByLocation = make(map[string]int64)
	}
	item.StockByLocation[locationID] = next
	total := item.SumStock()
	item.TotalQuantity = total

	if err := itemRepo.UpsertStock(item.ID, locationID, next); err != nil {
		return 0, fmt.Errorf("actualizar stock por bodega: %w", err)
	}
	if err := itemRepo.UpdateTotal(item.ID, total); err != nil {
		return 0, fmt.Errorf("actualizar agregado del ítem: %w", err)
	}
	return total, nil
}

// AggregateByItem agrupa los deltas de varias líneas por ítem para que cada
// ítem tenga una sola lectura y una sola escritura dentro de la transacción
// (líneas duplicadas del mismo ítem no deben producir escrituras separadas).
func AggregateByItem(deltas []ItemDelta) map[string]int64 {
	agg := make(map[string]int64, len(deltas))
	for _, d := range deltas {
		agg[d.ItemID] += d.Quantity
	}
	return agg
}

// ItemDelta delta de una línea individual antes de agregarse por ítem.
type ItemDelta struct {
	ItemID   string
	Quantity int64
}
