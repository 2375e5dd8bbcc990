package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/apptest"
	"github.com/jhoicas/almacen-api/internal/application/audit"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

const (
	origen  = "loc-origen"
	destino = "loc-destino"
	itemID  = "item-compresor"
	code    = "TRS-2506-0001"
)

// seedTransfer registra un traslado completado (4 enviadas, 3 recibidas, 1
// perdida) con las patas del log que se indiquen.
func seedTransfer(w *apptest.World, withOut, withIn bool) *entity.Order {
	dispatchedAt := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	closedAt := time.Date(2026, 6, 12, 16, 0, 0, 0, time.UTC)

	w.SeedItem(&entity.Item{
		ID:              itemID,
		UnitCost:        decimal.NewFromInt(200),
		StockByLocation: map[string]int64{origen: 6, destino: 3},
		TotalQuantity:   9,
	})

	order := &entity.Order{
		ID:            "order-1",
		Code:          code,
		Kind:          entity.OrderKindTRANSFER,
		Status:        entity.OrderStatusCOMPLETED,
		SourceID:      origen,
		DestinationID: destino,
		Lines: []entity.OrderLine{{
			ID: "line-1", OrderID: "order-1", ItemID: itemID,
			Sent: 4, Returned: 3, Scrapped: 1,
		}},
		CreatedBy:    "user-1",
		DispatchedAt: &dispatchedAt,
		ClosedAt:     &closedAt,
	}
	_ = w.Orders.Create(order)

	if withOut {
		_ = w.Movements.Create(&entity.Movement{
			ID: "mov-out", ItemID: itemID, LocationID: origen,
			Type: entity.MovementTypeTransferOUT, Quantity: -4,
			UnitCost: decimal.NewFromInt(200), TotalCost: decimal.NewFromInt(-800),
			OrderCode: code, RelatedLocation: destino,
			OccurredAt: dispatchedAt, CreatedAt: dispatchedAt, CreatedBy: "user-1",
		})
	}
	if withIn {
		_ = w.Movements.Create(&entity.Movement{
			ID: "mov-in", ItemID: itemID, LocationID: destino,
			Type: entity.MovementTypeTransferIN, Quantity: 3,
			UnitCost: decimal.NewFromInt(200), TotalCost: decimal.NewFromInt(600),
			OrderCode: code, RelatedLocation: origen,
			OccurredAt: closedAt, CreatedAt: closedAt, CreatedBy: "user-1",
		})
	}
	return order
}

func TestScanForGaps_LogCompletoSinHallazgos(t *testing.T) {
	w := apptest.NewWorld()
	seedTransfer(w, true, true)
	uc := audit.NewUseCase(w.Tx, w.Orders, w.Movements, nil)

	report, err := uc.ScanForGaps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.ScannedOrders)
	assert.Empty(t, report.Gaps)
}

func TestScanForGaps_DetectaEntradaFaltante(t *testing.T) {
	w := apptest.NewWorld()
	seedTransfer(w, true, false)
	uc := audit.NewUseCase(w.Tx, w.Orders, w.Movements, nil)

	report, err := uc.ScanForGaps(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Gaps, 1)

	gap := report.Gaps[0]
	assert.Equal(t, code, gap.OrderCode)
	assert.Equal(t, int64(0), gap.MissingOut)
	assert.Equal(t, int64(3), gap.MissingIn, "faltan las 3 unidades recibidas, no la perdida")
}

func TestRepair_SintetizaSoloLoFaltanteSinTocarStock(t *testing.T) {
	w := apptest.NewWorld()
	seedTransfer(w, true, false)
	uc := audit.NewUseCase(w.Tx, w.Orders, w.Movements, nil)

	report, err := uc.ScanForGaps(context.Background())
	require.NoError(t, err)

	repaired, err := uc.Repair(context.Background(), report, "auditor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	ins := w.Movements.OfType(entity.MovementTypeTransferIN)
	require.Len(t, ins, 1)
	synthesized := ins[0]
	assert.Equal(t, int64(3), synthesized.Quantity)
	assert.Equal(t, destino, synthesized.LocationID)
	assert.Equal(t, origen, synthesized.RelatedLocation)
	assert.Equal(t, code, synthesized.OrderCode)
	assert.Equal(t, "auditor-1", synthesized.CreatedBy)
	// La contraparte se fecha en el cierre de la orden, no en la reparación.
	assert.Equal(t, time.Date(2026, 6, 12, 16, 0, 0, 0, time.UTC), synthesized.OccurredAt)
	assert.True(t, synthesized.TotalCost.Equal(decimal.NewFromInt(600)))

	// La reparación solo completa el rastro: los saldos no cambian.
	assert.Equal(t, int64(6), w.Items.StockAt(itemID, origen))
	assert.Equal(t, int64(3), w.Items.StockAt(itemID, destino))
	assert.Equal(t, 0, w.Items.UpsertCalls)

	// Tras reparar, un nuevo escaneo queda limpio.
	report, err = uc.ScanForGaps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Gaps)
}

func TestRepair_SalidaFaltante(t *testing.T) {
	w := apptest.NewWorld()
	seedTransfer(w, false, true)
	uc := audit.NewUseCase(w.Tx, w.Orders, w.Movements, nil)

	report, err := uc.ScanForGaps(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Gaps, 1)
	assert.Equal(t, int64(4), report.Gaps[0].MissingOut)

	repaired, err := uc.Repair(context.Background(), report, "auditor-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	outs := w.Movements.OfType(entity.MovementTypeTransferOUT)
	require.Len(t, outs, 1)
	assert.Equal(t, int64(-4), outs[0].Quantity)
	assert.Equal(t, origen, outs[0].LocationID)
	// La salida sintetizada se fecha en el despacho.
	assert.Equal(t, time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC), outs[0].OccurredAt)
}

func TestRepair_ReporteVacioNoHaceNada(t *testing.T) {
	w := apptest.NewWorld()
	seedTransfer(w, true, true)
	uc := audit.NewUseCase(w.Tx, w.Orders, w.Movements, nil)

	report, err := uc.ScanForGaps(context.Background())
	require.NoError(t, err)

	repaired, err := uc.Repair(context.Background(), report, "auditor-1")
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	assert.Len(t, w.Movements.Log, 2, "el log queda exactamente como estaba")
}
