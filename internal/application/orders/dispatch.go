package orders

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Dispatch aprueba una orden con aprobación previa (TRANSFER): relee la orden
// dentro de la transacción, descuenta el stock del origen con un TRANSFER_OUT
// por línea y pasa DRAFT -> DISPATCHED. Los demás tipos ya aplicaron su efecto
// al crearse y no admiten esta transición.
func (uc *UseCase) Dispatch(ctx context.Context, orderID, actorID string) (*dto.OrderResponse, error) {
	if orderID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	var dispatched *entity.Order

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		order, err := orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.Kind.ApprovalGated() || order.Status != entity.OrderStatusDRAFT {
			return domain.ErrInvalidTransition
		}

		if err := uc.applyDispatchEffect(itemRepo, movRepo, order, actorID, now); err != nil {
			return err
		}

		order.Status = entity.OrderStatusDISPATCHED
		order.DispatchedBy = actorID
		dispatchedAt := now
		order.DispatchedAt = &dispatchedAt
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		dispatched = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, ports.DomainEvent{
		Type: ports.EventOrderDispatched, OrderID: dispatched.ID, OrderCode: dispatched.Code,
		Status: string(dispatched.Status), ActorID: actorID, At: now,
	})
	return toOrderResponse(dispatched), nil
}
