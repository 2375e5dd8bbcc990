// Package audit detecta y repara huecos históricos del log de movimientos:
// traslados completados a los que les falta una de las dos patas
// (TRANSFER_OUT en origen / TRANSFER_IN en destino).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase escaneo de solo lectura y reparación explícita disparada por un
// operador. La reparación solo escribe en el log: los saldos ya eran correctos
// al momento del despacho y nunca se tocan aquí.
type UseCase struct {
	txRunner  ports.TxRunner
	orderRepo repository.OrderRepository
	movRepo   repository.MovementRepository
	events    ports.EventPublisher // opcional
}

// NewUseCase construye el caso de uso. events puede ser nil.
func NewUseCase(
	txRunner ports.TxRunner,
	orderRepo repository.OrderRepository,
	movRepo repository.MovementRepository,
	events ports.EventPublisher,
) *UseCase {
	return &UseCase{txRunner: txRunner, orderRepo: orderRepo, movRepo: movRepo, events: events}
}

// ScanForGaps revisa cada traslado despachado (incluidos los completados y los
// de recepción parcial) y verifica contra el log que exista la salida en origen
// por lo enviado y la entrada en destino por lo recibido, con cantidades
// coincidentes y referencia a la orden. Devuelve el reporte de faltantes.
func (uc *UseCase) ScanForGaps(ctx context.Context) (*dto.AuditReport, error) {
	statuses := []entity.OrderStatus{
		entity.OrderStatusDISPATCHED,
		entity.OrderStatusPartialReturn,
		entity.OrderStatusCOMPLETED,
	}
	orders, err := uc.orderRepo.ListByKindAndStatus(entity.OrderKindTRANSFER, statuses)
	if err != nil {
		return nil, err
	}

	report := &dto.AuditReport{ScannedOrders: len(orders)}
	for _, order := range orders {
		movs, err := uc.movRepo.ListByOrderCode(order.Code)
		if err != nil {
			return nil, err
		}
		var loggedOut, loggedIn int64
		for _, m := range movs {
			switch m.Type {
			case entity.MovementTypeTransferOUT:
				loggedOut += -m.Quantity // la salida se guarda con signo negativo
			case entity.MovementTypeTransferIN:
				loggedIn += m.Quantity
			}
		}

		missingOut := order.TotalSent() - loggedOut
		missingIn := order.TotalReturned() - loggedIn
		if missingOut < 0 {
			missingOut = 0
		}
		if missingIn < 0 {
			missingIn = 0
		}
		if missingOut > 0 || missingIn > 0 {
			report.Gaps = append(report.Gaps, dto.TransferGap{
				OrderID:       order.ID,
				OrderCode:     order.Code,
				SourceID:      order.SourceID,
				DestinationID: order.DestinationID,
				MissingOut:    missingOut,
				MissingIn:     missingIn,
			})
		}
	}
	return report, nil
}

// Repair sintetiza los registros faltantes de un reporte y los inserta en un
// solo lote dentro de una transacción. El timestamp de cada registro nunca es
// anterior al despacho de su orden. Devuelve cuántos registros se crearon.
func (uc *UseCase) Repair(ctx context.Context, report *dto.AuditReport, actorID string) (int, error) {
	if report == nil || actorID == "" {
		return 0, domain.ErrInvalidInput
	}
	if len(report.Gaps) == 0 {
		return 0, nil
	}

	now := time.Now()
	repaired := 0
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		orderRepo repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		var batch []*entity.Movement
		for _, gap := range report.Gaps {
			// Releer la orden: el reporte pudo quedar viejo entre escaneo y reparación.
			order, err := orderRepo.GetByID(gap.OrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return domain.ErrNotFound
			}
			synthesized, err := uc.synthesize(itemRepo, order, gap, actorID, now)
			if err != nil {
				return err
			}
			batch = append(batch, synthesized...)
		}
		if len(batch) == 0 {
			return nil
		}
		repaired = len(batch)
		return movRepo.CreateBatch(batch)
	})
	if err != nil {
		return 0, err
	}

	if repaired > 0 && uc.events != nil {
		_ = uc.events.Publish(ctx, ports.DomainEvent{
			Type: ports.EventAuditRepaired, Quantity: int64(repaired), ActorID: actorID, At: now,
		})
	}
	return repaired, nil
}

// synthesize construye las contrapartes faltantes de una orden a partir de sus
// cantidades registradas. La pata de salida faltante se fecha en el despacho;
// la de entrada, en el cierre (o el despacho si la orden sigue abierta).
func (uc *UseCase) synthesize(
	itemRepo repository.ItemRepository,
	order *entity.Order,
	gap dto.TransferGap,
	actorID string,
	now time.Time,
) ([]*entity.Movement, error) {
	outAt := now
	if order.DispatchedAt != nil {
		outAt = *order.DispatchedAt
	}
	inAt := outAt
	if order.ClosedAt != nil {
		inAt = *order.ClosedAt
	}

	var batch []*entity.Movement
	remainingOut := gap.MissingOut
	remainingIn := gap.MissingIn
	for i := range order.Lines {
		line := &order.Lines[i]
		item, err := itemRepo.GetByID(line.ItemID)
		if err != nil {
			return nil, err
		}
		unitCost := decimal.Zero
		if item != nil {
			unitCost = item.UnitCost
		}

		if remainingOut > 0 && line.Sent > 0 {
			qty := line.Sent
			if qty > remainingOut {
				qty = remainingOut
			}
			remainingOut -= qty
			batch = append(batch, &entity.Movement{
				ID:              uuid.New().String(),
				ItemID:          line.ItemID,
				LocationID:      order.SourceID,
				Type:            entity.MovementTypeTransferOUT,
				Quantity:        -qty,
				UnitCost:        unitCost,
				TotalCost:       unitCost.Mul(decimal.NewFromInt(qty)).Neg(),
				OrderCode:       order.Code,
				RelatedLocation: order.DestinationID,
				OccurredAt:      outAt,
				CreatedAt:       now,
				CreatedBy:       actorID,
			})
		}
		if remainingIn > 0 && line.Returned > 0 {
			qty := line.Returned
			if qty > remainingIn {
				qty = remainingIn
			}
			remainingIn -= qty
			batch = append(batch, &entity.Movement{
				ID:              uuid.New().String(),
				ItemID:          line.ItemID,
				LocationID:      order.DestinationID,
				Type:            entity.MovementTypeTransferIN,
				Quantity:        qty,
				UnitCost:        unitCost,
				TotalCost:       unitCost.Mul(decimal.NewFromInt(qty)),
				OrderCode:       order.Code,
				RelatedLocation: order.SourceID,
				OccurredAt:      inAt,
				CreatedAt:       now,
				CreatedBy:       actorID,
			})
		}
	}
	return batch, nil
}
