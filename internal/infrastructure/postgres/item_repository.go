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

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem nuevo (stock cero, sin filas por bodega).
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (id, sku, name, description, unit_cost, total_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SKU, item.Name, item.Description, item.UnitCost,
		item.TotalQuantity, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem con su mapa de stock por bodega cargado.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `
		SELECT id, sku, name, description, unit_cost, total_quantity, created_at, updated_at
		FROM items WHERE id = $1`
	var i entity.Item
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&i.ID, &i.SKU, &i.Name, &i.Description, &i.UnitCost,
		&i.TotalQuantity, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if err := r.loadStock(&i); err != nil {
		return nil, err
	}
	return &i, nil
}

// List lista ítems paginados con su stock por bodega.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := `
		SELECT id, sku, name, description, unit_cost, total_quantity, created_at, updated_at
		FROM items ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		var i entity.Item
		if err := rows.Scan(&i.ID, &i.SKU, &i.Name, &i.Description, &i.UnitCost,
			&i.TotalQuantity, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, i := range list {
		if err := r.loadStock(i); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// UpsertStock fija la cantidad absoluta de un ítem en una bodega.
func (r *ItemRepo) UpsertStock(itemID, locationID string, quantity int64) error {
	query := `
		INSERT INTO item_stock (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, itemID, locationID, quantity)
	if err != nil {
		return fmt.Errorf("upsert item stock: %w", err)
	}
	return nil
}

// UpdateTotal persiste el agregado derivado del ítem.
func (r *ItemRepo) UpdateTotal(itemID string, total int64) error {
	query := `UPDATE items SET total_quantity = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, itemID, total)
	if err != nil {
		return fmt.Errorf("update item total: %w", err)
	}
	return nil
}

func (r *ItemRepo) loadStock(item *entity.Item) error {
	query := `SELECT location_id, quantity FROM item_stock WHERE item_id = $1`
	rows, err := r.q.Query(context.Background(), query, item.ID)
	if err != nil {
		return fmt.Errorf("load item stock: %w", err)
	}
	defer rows.Close()
	item.StockByLocation = make(map[string]int64)
	for rows.Next() {
		var locationID string
		var quantity int64
		if err := rows.Scan(&locationID, &quantity); err != nil {
			return fmt.Errorf("scan item stock: %w", err)
		}
		item.StockByLocation[locationID] = quantity
	}
	return rows.Err()
}
