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

// Receive aplica deltas de recepción a una orden en una sola transacción.
// La orden se relee fresca dentro de la transacción (nunca se reutiliza una
// copia previa) para no pisar recepciones parciales concurrentes. Solo lo
// devuelto vuelve al stock; lo dado de baja queda documentado en el log sin
// efecto de saldo. Al ser deltas y no absolutos, las recepciones parciales
// repetidas suman y el tope Returned+Scrapped <= Sent corta los duplicados.
func (uc *UseCase) Receive(ctx context.Context, orderID, actorID string, in dto.ReceiveOrderRequest) (*dto.OrderResponse, error) {
	if orderID == "" || actorID == "" || len(in.Deltas) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, d := range in.Deltas {
		if d.ItemID == "" || d.AddReturned < 0 || d.AddScrapped < 0 || d.AddReturned+d.AddScrapped == 0 {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	var received *entity.Order

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
		if order.Status != entity.OrderStatusDISPATCHED && order.Status != entity.OrderStatusPartialReturn {
			return domain.ErrInvalidTransition
		}
		// En recepciones de compra no existe "baja": todo lo no recibido queda pendiente.
		if order.Kind == entity.OrderKindRECEIPT {
			for _, d := range in.Deltas {
				if d.AddScrapped > 0 {
					return domain.ErrInvalidInput
				}
			}
		}

		// Validar y asignar cada delta a una línea antes de escribir nada.
		for _, d := range in.Deltas {
			line, err := locateLine(order, d)
			if err != nil {
				return err
			}
			line.Returned += d.AddReturned
			line.Scrapped += d.AddScrapped
		}

		// Lo devuelto entra al stock: en SERVICE vuelve al origen, en
		// TRANSFER/RECEIPT entra al destino. Deltas del mismo ítem se agregan
		// a una sola lectura y escritura.
		stockLocation := order.DestinationID
		if order.Kind == entity.OrderKindSERVICE {
			stockLocation = order.SourceID
		}
		var stockDeltas []ledger.ItemDelta
		for _, d := range in.Deltas {
			if d.AddReturned > 0 {
				stockDeltas = append(stockDeltas, ledger.ItemDelta{ItemID: d.ItemID, Quantity: d.AddReturned})
			}
		}
		agg := ledger.AggregateByItem(stockDeltas)

		// Leer una sola vez cada ítem tocado (también los de solo baja, por la valorización).
		items := make(map[string]*entity.Item)
		ids := make([]string, 0, len(in.Deltas))
		for _, d := range in.Deltas {
			if _, seen := items[d.ItemID]; seen {
				continue
			}
			items[d.ItemID] = nil
			ids = append(ids, d.ItemID)
		}
		sort.Strings(ids)
		for _, id := range ids {
			item, err := itemRepo.GetByID(id)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
			}
			items[id] = item
		}

		for _, id := range ids {
			if q := agg[id]; q > 0 {
				if _, err := ledger.ApplyDelta(itemRepo, items[id], stockLocation, q); err != nil {
					return err
				}
			}
		}

		inType := entity.MovementTypeIN
		related := ""
		scrapType := entity.MovementTypeDEPRECIATION
		if order.Kind == entity.OrderKindTRANSFER {
			inType = entity.MovementTypeTransferIN
			related = order.SourceID
			scrapType = entity.MovementTypeSCRAP
		}
		for _, d := range in.Deltas {
			item := items[d.ItemID]
			if d.AddReturned > 0 {
				mov := &entity.Movement{
					ID:              uuid.New().String(),
					ItemID:          d.ItemID,
					LocationID:      stockLocation,
					Type:            inType,
					Quantity:        d.AddReturned,
					UnitCost:        item.UnitCost,
					TotalCost:       item.UnitCost.Mul(decimal.NewFromInt(d.AddReturned)),
					OrderCode:       order.Code,
					RelatedLocation: related,
					OccurredAt:      now,
					CreatedAt:       now,
					CreatedBy:       actorID,
				}
				if err := movRepo.Create(mov); err != nil {
					return err
				}
			}
			if d.AddScrapped > 0 {
				mov := &entity.Movement{
					ID:         uuid.New().String(),
					ItemID:     d.ItemID,
					LocationID: stockLocation,
					Type:       scrapType,
					Quantity:   d.AddScrapped,
					UnitCost:   item.UnitCost,
					TotalCost:  item.UnitCost.Mul(decimal.NewFromInt(d.AddScrapped)),
					OrderCode:  order.Code,
					OccurredAt: now,
					CreatedAt:  now,
					CreatedBy:  actorID,
				}
				if err := movRepo.Create(mov); err != nil {
					return err
				}
			}
		}

		order.Status = order.RecomputeStatus()
		if order.Status == entity.OrderStatusCOMPLETED {
			closedAt := now
			order.ClosedAt = &closedAt
		}
		order.UpdatedAt = now
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		received = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, ports.DomainEvent{
		Type: ports.EventOrderReceived, OrderID: received.ID, OrderCode: received.Code,
		Status: string(received.Status), ActorID: actorID, At: now,
	})
	return toOrderResponse(received), nil
}

// locateLine ubica la línea que recibirá el delta: la primera línea del ítem
// con capacidad restante suficiente. Si el ítem no está en la orden es un
// NotFound; si ninguna línea tiene capacidad, el delta desbordaría lo enviado.
func locateLine(order *entity.Order, d dto.ReceiveLineDelta) (*entity.OrderLine, error) {
	var first *entity.OrderLine
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.ItemID != d.ItemID {
			continue
		}
		if first == nil {
			first = line
		}
		if line.Outstanding() >= d.AddReturned+d.AddScrapped {
			return line, nil
		}
	}
	if first == nil {
		return nil, fmt.Errorf("%w: la orden no tiene línea del ítem %s", domain.ErrNotFound, d.ItemID)
	}
	return nil, &domain.LineOverflowError{
		OrderID:  order.ID,
		ItemID:   d.ItemID,
		Sent:     first.Sent,
		Returned: first.Returned,
		Scrapped: first.Scrapped,
		AddQty:   d.AddReturned + d.AddScrapped,
	}
}
