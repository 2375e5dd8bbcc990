package ports

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción atómica del almacén,
// pasando repositorios atados a esa transacción. El almacén detecta conflictos
// de concurrencia optimista y reintenta el cuerpo completo un número acotado de
// veces, por lo que fn debe releer y revalidar todo en cada intento y no
// cachear lecturas previas. Agotados los reintentos retorna domain.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
