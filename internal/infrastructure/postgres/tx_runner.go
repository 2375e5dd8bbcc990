package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements ports.TxRunner.
var _ ports.TxRunner = (*TxRunner)(nil)

// maxTxAttempts presupuesto de reintentos ante conflictos de serialización.
const maxTxAttempts = 5

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL SERIALIZABLE
// y reintenta el cuerpo completo ante conflictos de concurrencia optimista.
// No se toman locks explícitos: la contención se resuelve solo por reintento,
// por lo que el callback relee y revalida todo en cada intento.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run ejecuta fn con repos atados a la transacción y hace Commit o Rollback.
// Ante 40001/40P01 reintenta hasta maxTxAttempts; agotado el presupuesto
// retorna domain.ErrConflict envuelto con el último error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	itemRepo := NewItemRepository(tx)
	movRepo := NewMovementRepository(tx)
	orderRepo := NewOrderRepository(tx)
	seqRepo := NewSequenceRepository(tx)

	if err := fn(itemRepo, movRepo, orderRepo, seqRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
