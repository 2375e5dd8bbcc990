package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// ItemRepository define el puerto de persistencia para ítems y su stock por bodega.
// Las cantidades solo mutan por la ruta transaccional del libro de stock.
type ItemRepository interface {
	Create(item *entity.Item) error
	// GetByID devuelve el ítem con su mapa de stock por bodega cargado (nil si no existe).
	GetByID(id string) (*entity.Item, error)
	List(limit, offset int) ([]*entity.Item, error)
	// UpsertStock fija la cantidad absoluta de un ítem en una bodega.
	UpsertStock(itemID, locationID string, quantity int64) error
	// UpdateTotal persiste el agregado derivado (suma del mapa por bodega).
	UpdateTotal(itemID string, total int64) error
}
