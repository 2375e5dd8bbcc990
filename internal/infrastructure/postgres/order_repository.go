package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const selectOrder = `
	SELECT id, code, kind, status, source_id, destination_id, notes,
	       created_by, created_at, COALESCE(dispatched_by, ''), dispatched_at,
	       closed_at, updated_at
	FROM orders`

// Create inserta la orden con sus líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (
			id, code, kind, status, source_id, destination_id, notes,
			created_by, created_at, dispatched_by, dispatched_at, closed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Code, order.Kind, order.Status,
		nullIfEmpty(order.SourceID), nullIfEmpty(order.DestinationID), order.Notes,
		order.CreatedBy, order.CreatedAt, nullIfEmpty(order.DispatchedBy),
		order.DispatchedAt, order.ClosedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}
	for i := range order.Lines {
		if err := r.insertLine(&order.Lines[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepo) insertLine(line *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, item_id, sent, returned, scrapped)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.OrderID, line.ItemID, line.Sent, line.Returned, line.Scrapped)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetByID obtiene la orden con sus líneas (nil si no existe).
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.getOne(selectOrder+` WHERE id = $1`, id)
}

// GetByCode obtiene la orden por su código legible.
func (r *OrderRepo) GetByCode(code string) (*entity.Order, error) {
	return r.getOne(selectOrder+` WHERE code = $1`, code)
}

func (r *OrderRepo) getOne(query string, arg any) (*entity.Order, error) {
	var o entity.Order
	var sourceID, destinationID *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&o.ID, &o.Code, &o.Kind, &o.Status, &sourceID, &destinationID, &o.Notes,
		&o.CreatedBy, &o.CreatedAt, &o.DispatchedBy, &o.DispatchedAt,
		&o.ClosedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if sourceID != nil {
		o.SourceID = *sourceID
	}
	if destinationID != nil {
		o.DestinationID = *destinationID
	}
	if err := r.loadLines(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update persiste cabecera y contadores de líneas tras una transición.
// Las líneas nunca se agregan ni se quitan después de crear la orden, solo
// mutan sus contadores returned/scrapped.
func (r *OrderRepo) Update(order *entity.Order) error {
	query := `
		UPDATE orders SET
			status = $2, notes = $3, dispatched_by = $4, dispatched_at = $5,
			closed_at = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.Notes, nullIfEmpty(order.DispatchedBy),
		order.DispatchedAt, order.ClosedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		lineQuery := `UPDATE order_lines SET returned = $2, scrapped = $3 WHERE id = $1`
		if _, err := r.q.Exec(context.Background(), lineQuery,
			line.ID, line.Returned, line.Scrapped); err != nil {
			return fmt.Errorf("update order line: %w", err)
		}
	}
	return nil
}

// ListByKindAndStatus lista órdenes de un tipo en cualquiera de los estados dados.
func (r *OrderRepo) ListByKindAndStatus(kind entity.OrderKind, statuses []entity.OrderStatus) ([]*entity.Order, error) {
	states := make([]string, len(statuses))
	for i, s := range statuses {
		states[i] = string(s)
	}
	query := selectOrder + ` WHERE kind = $1 AND status = ANY($2) ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, kind, states)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var sourceID, destinationID *string
		if err := rows.Scan(&o.ID, &o.Code, &o.Kind, &o.Status, &sourceID, &destinationID,
			&o.Notes, &o.CreatedBy, &o.CreatedAt, &o.DispatchedBy, &o.DispatchedAt,
			&o.ClosedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if sourceID != nil {
			o.SourceID = *sourceID
		}
		if destinationID != nil {
			o.DestinationID = *destinationID
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		if err := r.loadLines(o); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *OrderRepo) loadLines(order *entity.Order) error {
	query := `
		SELECT id, order_id, item_id, sent, returned, scrapped
		FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, order.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.Sent, &l.Returned, &l.Scrapped); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	return rows.Err()
}
