package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// MovementRepository define el puerto de persistencia para el log de movimientos.
// Los registros son de una sola escritura: nunca se actualizan ni se borran.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	// CreateBatch inserta varios registros en un lote (reparación de auditoría).
	CreateBatch(movements []*entity.Movement) error
	// ListByItem lista los movimientos de un ítem ordenados por fecha ascendente,
	// opcionalmente acotados a una bodega (locationID vacío = todas).
	ListByItem(itemID, locationID string) ([]*entity.Movement, error)
	// ListByOrderCode lista los movimientos que referencian una orden.
	ListByOrderCode(code string) ([]*entity.Movement, error)
}
