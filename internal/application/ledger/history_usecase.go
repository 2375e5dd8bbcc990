package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/kardex"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// HistoryUseCase lecturas del log de movimientos: historial plano y kardex con
// saldos reconstruidos. Son rutas de solo lectura para reporte; no participan
// del mecanismo de consistencia.
type HistoryUseCase struct {
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(itemRepo repository.ItemRepository, movRepo repository.MovementRepository) *HistoryUseCase {
	return &HistoryUseCase{itemRepo: itemRepo, movRepo: movRepo}
}

// ListMovements movimientos de un ítem ordenados por fecha ascendente,
// opcionalmente acotados a una bodega.
func (uc *HistoryUseCase) ListMovements(ctx context.Context, itemID, locationID string) ([]dto.MovementResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	movs, err := uc.movRepo.ListByItem(itemID, locationID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// Kardex reconstruye el saldo histórico del ítem (por bodega o agregado):
// deriva el saldo inicial restando al actual el efecto neto del log y
// reproduce los movimientos hacia adelante con el saldo corriente en cada punto.
func (uc *HistoryUseCase) Kardex(ctx context.Context, itemID, locationID string) (*dto.KardexResponse, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	current := item.TotalQuantity
	if locationID != "" {
		current = item.QuantityAt(locationID)
	}

	movs, err := uc.movRepo.ListByItem(itemID, locationID)
	if err != nil {
		return nil, err
	}
	start, entries := kardex.Reconstruct(current, movs)

	resp := &dto.KardexResponse{
		ItemID:       itemID,
		LocationID:   locationID,
		StartBalance: start,
		Current:      current,
		Entries:      make([]dto.KardexEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.KardexEntryResponse{
			Movement: toMovementResponse(e.Movement),
			Balance:  e.Balance,
		})
	}
	return resp, nil
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		LocationID:      m.LocationID,
		Type:            string(m.Type),
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		TotalCost:       m.TotalCost,
		OrderCode:       m.OrderCode,
		RelatedLocation: m.RelatedLocation,
		OccurredAt:      m.OccurredAt,
		CreatedBy:       m.CreatedBy,
	}
}
