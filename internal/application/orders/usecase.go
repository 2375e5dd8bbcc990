// Package orders implementa el ciclo de vida de órdenes (despacho, recepción,
// cancelación) sobre transacciones atómicas del libro de stock y el log de
// movimientos.
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
	"github.com/jhoicas/almacen-api/internal/domain/sequence"
)

// UseCase casos de uso del ciclo de vida de órdenes. Toda mutación ocurre en
// una sola transacción vía TxRunner; los eventos se publican después del commit.
type UseCase struct {
	txRunner     ports.TxRunner
	orderRepo    repository.OrderRepository // lecturas fuera de transacción
	locationRepo repository.LocationRepository
	events       ports.EventPublisher // opcional (nil = sin publicación)
}

// NewUseCase construye el caso de uso. events puede ser nil.
func NewUseCase(
	txRunner ports.TxRunner,
	orderRepo repository.OrderRepository,
	locationRepo repository.LocationRepository,
	events ports.EventPublisher,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		orderRepo:    orderRepo,
		locationRepo: locationRepo,
		events:       events,
	}
}

// CreateAndDispatch crea la orden en una sola transacción: agrega cantidades
// por ítem, valida disponibilidad en origen, descuenta stock, escribe un
// movimiento por línea, reserva el consecutivo y crea la orden. Los tipos con
// aprobación previa (TRANSFER) se crean en DRAFT sin tocar stock; el efecto se
// aplica en Dispatch. Devuelve la orden con su código formateado.
func (uc *UseCase) CreateAndDispatch(ctx context.Context, actorID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	kind := entity.OrderKind(in.Kind)
	if !kind.Valid() || len(in.Lines) == 0 || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, l := range in.Lines {
		if l.ItemID == "" || l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	}
	if err := uc.validateLocations(kind, in.SourceID, in.DestinationID); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:            uuid.New().String(),
		Kind:          kind,
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		Notes:         in.Notes,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, l := range in.Lines {
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:      uuid.New().String(),
			OrderID: order.ID,
			ItemID:  l.ItemID,
			Sent:    l.Quantity,
		})
	}

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		seqRepo repository.SequenceRepository,
	) error {
		if kind.ApprovalGated() {
			order.Status = entity.OrderStatusDRAFT
		} else {
			order.Status = entity.OrderStatusDISPATCHED
			order.DispatchedBy = actorID
			dispatchedAt := now
			order.DispatchedAt = &dispatchedAt
		}
		// El código se reserva antes del efecto de stock para que los
		// movimientos del despacho ya lo referencien.
		scopeKind, year, month := sequence.Scope(kind, now)
		seq, err := seqRepo.ReserveNext(scopeKind, year, month)
		if err != nil {
			return fmt.Errorf("reservar consecutivo: %w", err)
		}
		order.Code = sequence.Format(kind, now, seq)

		// Solo SERVICE descuenta stock al crear; RECEIPT recibe el stock en
		// Receive y TRANSFER lo descuenta en la aprobación (Dispatch).
		if kind == entity.OrderKindSERVICE {
			if err := uc.applyDispatchEffect(itemRepo, movRepo, order, actorID, now); err != nil {
				return err
			}
		}

		return orderRepo.Create(order)
	})
	if err != nil {
		return nil, err
	}

	if order.Status == entity.OrderStatusDISPATCHED {
		uc.publish(ctx, ports.DomainEvent{
			Type: ports.EventOrderDispatched, OrderID: order.ID, OrderCode: order.Code,
			Status: string(order.Status), ActorID: actorID, At: now,
		})
	}
	return toOrderResponse(order), nil
}

// GetByID lectura de una orden (fuera de transacción).
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return toOrderResponse(order), nil
}

// applyDispatchEffect descuenta del origen lo enviado por todas las líneas y
// escribe un movimiento de salida por línea. Los deltas de líneas que repiten
// ítem se agregan para que cada ítem tenga una sola lectura y una sola
// escritura de stock en la transacción. Si algún ítem no alcanza, se aborta
// con el detalle de todos los faltantes antes de cualquier escritura.
func (uc *UseCase) applyDispatchEffect(
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
	var shortages []domain.StockShortage
	for _, id := range itemIDs {
		item, err := itemRepo.GetByID(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, id)
		}
		items[id] = item
		if available := item.QuantityAt(order.SourceID); available < agg[id] {
			shortages = append(shortages, domain.StockShortage{
				ItemID:     id,
				LocationID: order.SourceID,
				Requested:  agg[id],
				Available:  available,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.StockShortageError{Shortages: shortages}
	}

	for _, id := range itemIDs {
		if _, err := ledger.ApplyDelta(itemRepo, items[id], order.SourceID, -agg[id]); err != nil {
			return err
		}
	}

	movType := entity.MovementTypeOUT
	related := ""
	if order.Kind == entity.OrderKindTRANSFER {
		movType = entity.MovementTypeTransferOUT
		related = order.DestinationID
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		item := items[line.ItemID]
		mov := &entity.Movement{
			ID:              uuid.New().String(),
			ItemID:          line.ItemID,
			LocationID:      order.SourceID,
			Type:            movType,
			Quantity:        -line.Sent,
			UnitCost:        item.UnitCost,
			TotalCost:       item.UnitCost.Mul(decimal.NewFromInt(line.Sent)).Neg(),
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
	return nil
}

// validateLocations verifica que las bodegas requeridas por el tipo existan.
func (uc *UseCase) validateLocations(kind entity.OrderKind, sourceID, destinationID string) error {
	needsSource := kind == entity.OrderKindSERVICE || kind == entity.OrderKindTRANSFER
	needsDestination := kind == entity.OrderKindTRANSFER || kind == entity.OrderKindRECEIPT

	if needsSource {
		if sourceID == "" {
			return domain.ErrInvalidInput
		}
		loc, err := uc.locationRepo.GetByID(sourceID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: bodega origen %s", domain.ErrNotFound, sourceID)
		}
	}
	if needsDestination {
		if destinationID == "" {
			return domain.ErrInvalidInput
		}
		if destinationID == sourceID {
			return domain.ErrInvalidInput
		}
		loc, err := uc.locationRepo.GetByID(destinationID)
		if err != nil {
			return err
		}
		if loc == nil {
			return fmt.Errorf("%w: bodega destino %s", domain.ErrNotFound, destinationID)
		}
	}
	return nil
}

// publish emite un evento post-commit. La publicación es informativa: su
// falla no revierte nada ni se propaga al llamador.
func (uc *UseCase) publish(ctx context.Context, event ports.DomainEvent) {
	if uc.events == nil {
		return
	}
	_ = uc.events.Publish(ctx, event)
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:            o.ID,
		Code:          o.Code,
		Kind:          string(o.Kind),
		Status:        string(o.Status),
		SourceID:      o.SourceID,
		DestinationID: o.DestinationID,
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		DispatchedBy:  o.DispatchedBy,
		DispatchedAt:  o.DispatchedAt,
		ClosedAt:      o.ClosedAt,
	}
	for i := range o.Lines {
		l := &o.Lines[i]
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:       l.ID,
			ItemID:   l.ItemID,
			Sent:     l.Sent,
			Returned: l.Returned,
			Scrapped: l.Scrapped,
		})
	}
	return resp
}
