package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Cancel cancela una orden. Solo es válido desde DRAFT (sin efecto de stock) o
// DISPATCHED; una orden con recepciones parciales o en estado terminal no se
// cancela. Si el despacho ya descontó stock, el reverso es simétrico: el delta
// inverso vuelve al origen y queda un movimiento RETURN por línea que lo
// justifica, todo dentro de la misma transacción.
func (uc *UseCase) Cancel(ctx context.Context, orderID, actorID string) (*dto.OrderResponse, error) {
	if orderID == "" || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	var cancelled *entity.Order

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
		if order.Status != entity.OrderStatusDRAFT && order.Status != entity.OrderStatusDISPATCHED {
			return domain.ErrInvalidTransition
		}

		// RECEIPT nunca descuenta stock al despacharse; TRANSFER y SERVICE sí,
		// y solo si la orden llegó a DISPATCHED.
		stockApplied := order.Status == entity.OrderStatusDISPATCHED && order.Kind != entity.OrderKindRECEIPT
		if stockApplied {
			if err := uc.reverseDispatchEffect(itemRepo, movRepo, order, actorID, now); err != nil {
				return err
			}
		}

		order.Status = entity.OrderStatusCANCELLED
		closedAt := now
		order.ClosedAt = &closedAt
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, ports.DomainEvent{
		Type: ports.EventOrderCancelled, OrderID: cancelled.ID, OrderCode: cancelled.Code,
		Status: string(cancelled.Status), ActorID: actorID, At: now,
	})
	return toOrderResponse(cancelled), nil
}

// reverseDispatchEffect devuelve al origen todo lo enviado, agregado por ítem,
// con un RETURN compensatorio por línea referenciando el código de la orden.
func (uc *UseCase) reverseDispatchEffect(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	order *entity.Order,
	actorID string,
	now time.Time,
) error {
	var deltas []ledger.ItemDelta
	for i := range order.Lines {
		deltas = append(deltas, ledger.ItemDelta{ItemID: order.Lines[i].ItemID, Quantity: order.Lines[i].Sent})
	}
	agg := ledger.AggregateByItem(deltas)

	itemIDs := make([]string, 0, len(agg))
	for id := range agg {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	items := make(map[string]*entity.Item, len(itemIDs))
	for _, id := range itemIDs {
		item, err := itemRepo.GetByID(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
		}
		items[id] = item
		if _, err := ledger.ApplyDelta(itemRepo, item, order.SourceID, agg[id]); err != nil {
			return err
		}
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		item := items[line.ItemID]
		mov := &entity.Movement{
			ID:         uuid.New().String(),
			ItemID:     line.ItemID,
			LocationID: order.SourceID,
			Type:       entity.MovementTypeRETURN,
			Quantity:   line.Sent,
			UnitCost:   item.UnitCost,
			TotalCost:  item.UnitCost.Mul(decimal.NewFromInt(line.Sent)),
			OrderCode:  order.Code,
			OccurredAt: now,
			CreatedAt:  now,
			CreatedBy:  actorID,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
	}
	return nil
}
