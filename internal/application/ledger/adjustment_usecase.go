package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// AdjustmentUseCase ajustes manuales y reconciliación por conteo físico,
// cada uno en su propia transacción atómica (delta de stock + registro en el log).
type AdjustmentUseCase struct {
	txRunner     ports.TxRunner
	locationRepo repository.LocationRepository
	events       ports.EventPublisher // opcional
}

// NewAdjustmentUseCase construye el caso de uso. events puede ser nil.
func NewAdjustmentUseCase(txRunner ports.TxRunner, locationRepo repository.LocationRepository, events ports.EventPublisher) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, locationRepo: locationRepo, events: events}
}

// RegisterAdjustment aplica un ajuste manual con signo y lo registra como
// movimiento ADJUSTMENT. Un ajuste negativo que dejaría la bodega bajo cero
// aborta la transacción sin escribir.
func (uc *AdjustmentUseCase) RegisterAdjustment(ctx context.Context, actorID string, in dto.AdjustmentRequest) error {
	if in.ItemID == "" || in.LocationID == "" || in.Quantity == 0 || actorID == "" {
		return domain.ErrInvalidInput
	}
	if err := uc.requireLocation(in.LocationID); err != nil {
		return err
	}
	now := time.Now()

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		item, err := itemRepo.GetByID(in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, in.ItemID)
		}
		if _, err := ApplyDelta(itemRepo, item, in.LocationID, in.Quantity); err != nil {
			return err
		}
		return movRepo.Create(&entity.Movement{
			ID:         uuid.New().String(),
			ItemID:     in.ItemID,
			LocationID: in.LocationID,
			Type:       entity.MovementTypeADJUSTMENT,
			Quantity:   in.Quantity,
			UnitCost:   item.UnitCost,
			TotalCost:  item.UnitCost.Mul(decimal.NewFromInt(in.Quantity)),
			OccurredAt: now,
			CreatedAt:  now,
			CreatedBy:  actorID,
		})
	})
	if err != nil {
		return err
	}

	uc.publishAdjusted(ctx, in.ItemID, in.LocationID, in.Quantity, actorID, now)
	return nil
}

// ReconcileCount reconcilia el stock de un ítem/bodega con lo contado
// físicamente: la diferencia se aplica como delta y queda en el log como
// movimiento AUDIT. Un conteo igual a lo registrado no escribe nada.
func (uc *AdjustmentUseCase) ReconcileCount(ctx context.Context, actorID string, in dto.CountRequest) (*dto.CountResponse, error) {
	if in.ItemID == "" || in.LocationID == "" || in.CountedQty < 0 || actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.requireLocation(in.LocationID); err != nil {
		return nil, err
	}
	now := time.Now()
	var resp *dto.CountResponse

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.OrderRepository,
		_ repository.SequenceRepository,
	) error {
		item, err := itemRepo.GetByID(in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, in.ItemID)
		}
		previous := item.QuantityAt(in.LocationID)
		delta := in.CountedQty - previous
		resp = &dto.CountResponse{
			ItemID:     in.ItemID,
			LocationID: in.LocationID,
			Previous:   previous,
			Counted:    in.CountedQty,
			Delta:      delta,
			Total:      item.TotalQuantity,
		}
		if delta == 0 {
			return nil
		}
		total, err := ApplyDelta(itemRepo, item, in.LocationID, delta)
		if err != nil {
			return err
		}
		resp.Total = total
		return movRepo.Create(&entity.Movement{
			ID:         uuid.New().String(),
			ItemID:     in.ItemID,
			LocationID: in.LocationID,
			Type:       entity.MovementTypeAUDIT,
			Quantity:   delta,
			UnitCost:   item.UnitCost,
			TotalCost:  item.UnitCost.Mul(decimal.NewFromInt(delta)),
			OccurredAt: now,
			CreatedAt:  now,
			CreatedBy:  actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	if resp.Delta != 0 {
		uc.publishAdjusted(ctx, in.ItemID, in.LocationID, resp.Delta, actorID, now)
	}
	return resp, nil
}

func (uc *AdjustmentUseCase) requireLocation(locationID string) error {
	loc, err := uc.locationRepo.GetByID(locationID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, locationID)
	}
	return nil
}

func (uc *AdjustmentUseCase) publishAdjusted(ctx context.Context, itemID, locationID string, qty int64, actorID string, at time.Time) {
	if uc.events == nil {
		return
	}
	_ = uc.events.Publish(ctx, ports.DomainEvent{
		Type: ports.EventStockAdjusted, ItemID: itemID, LocationID: locationID,
		Quantity: qty, ActorID: actorID, At: at,
	})
}
