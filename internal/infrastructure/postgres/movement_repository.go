package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL.
// Solo inserta y lista: el log de movimientos no se actualiza ni se borra.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const insertMovement = `
	INSERT INTO movements (
		id, item_id, location_id, type, quantity, unit_cost, total_cost,
		order_code, related_location, occurred_at, created_at, created_by
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Create inserta un registro en el log.
func (r *MovementRepo) Create(m *entity.Movement) error {
	_, err := r.q.Exec(context.Background(), insertMovement,
		m.ID, m.ItemID, m.LocationID, m.Type, m.Quantity, m.UnitCost, m.TotalCost,
		nullIfEmpty(m.OrderCode), nullIfEmpty(m.RelatedLocation),
		m.OccurredAt, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// CreateBatch inserta varios registros en la misma transacción.
// Usado por la reparación de auditoría para que las contrapartes sintetizadas
// entren todas o ninguna.
func (r *MovementRepo) CreateBatch(movements []*entity.Movement) error {
	for _, m := range movements {
		if err := r.Create(m); err != nil {
			return err
		}
	}
	return nil
}

// ListByItem lista los movimientos de un ítem en orden cronológico ascendente.
// locationID vacío incluye todas las bodegas.
func (r *MovementRepo) ListByItem(itemID, locationID string) ([]*entity.Movement, error) {
	query := `
		SELECT id, item_id, location_id, type, quantity, unit_cost, total_cost,
		       COALESCE(order_code, ''), COALESCE(related_location, ''),
		       occurred_at, created_at, created_by
		FROM movements
		WHERE item_id = $1 AND ($2 = '' OR location_id = $2)
		ORDER BY occurred_at ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, itemID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByOrderCode lista los movimientos que referencian una orden.
func (r *MovementRepo) ListByOrderCode(code string) ([]*entity.Movement, error) {
	query := `
		SELECT id, item_id, location_id, type, quantity, unit_cost, total_cost,
		       COALESCE(order_code, ''), COALESCE(related_location, ''),
		       occurred_at, created_at, created_by
		FROM movements
		WHERE order_code = $1
		ORDER BY occurred_at ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, code)
	if err != nil {
		return nil, fmt.Errorf("list movements by order: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(&m.ID, &m.ItemID, &m.LocationID, &m.Type, &m.Quantity,
			&m.UnitCost, &m.TotalCost, &m.OrderCode, &m.RelatedLocation,
			&m.OccurredAt, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// nullIfEmpty convierte "" en NULL para columnas opcionales.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
