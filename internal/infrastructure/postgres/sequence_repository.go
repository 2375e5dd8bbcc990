package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación de SequenceRepository sobre PostgreSQL.
// Debe usarse siempre dentro de la transacción que consume el valor: si esa
// transacción aborta, el incremento se revierte y el número nunca se emite.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// ReserveNext incrementa y devuelve el contador del alcance (tipo, año, mes).
// El upsert atómico crea la fila en 1 la primera vez que se usa el alcance.
func (r *SequenceRepo) ReserveNext(kind string, year, month int) (int64, error) {
	query := `
		INSERT INTO sequence_counters (kind, year, month, value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (kind, year, month)
		DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`
	var value int64
	err := r.q.QueryRow(context.Background(), query, kind, year, month).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("reserve sequence: %w", err)
	}
	return value, nil
}
