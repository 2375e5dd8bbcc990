package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/apptest"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

const (
	bodega    = "loc-1"
	itemLlave = "item-llave"
)

func newWorld() *apptest.World {
	w := apptest.NewWorld()
	w.SeedLocation(bodega, "Bodega Principal")
	w.SeedItem(&entity.Item{
		ID:              itemLlave,
		SKU:             "LLV-010",
		Name:            "Llave de impacto",
		UnitCost:        decimal.NewFromInt(30),
		StockByLocation: map[string]int64{bodega: 12},
		TotalQuantity:   12,
	})
	return w
}

func TestRegisterAdjustment_PositivoYNegativo(t *testing.T) {
	w := newWorld()
	uc := ledger.NewAdjustmentUseCase(w.Tx, w.Locations, nil)

	err := uc.RegisterAdjustment(context.Background(), "auditor-1", dto.AdjustmentRequest{
		ItemID: itemLlave, LocationID: bodega, Quantity: 3, Reason: "hallazgo en conteo",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), w.Items.StockAt(itemLlave, bodega))

	err = uc.RegisterAdjustment(context.Background(), "auditor-1", dto.AdjustmentRequest{
		ItemID: itemLlave, LocationID: bodega, Quantity: -5, Reason: "merma",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), w.Items.StockAt(itemLlave, bodega))
	assert.Equal(t, int64(10), w.Items.TotalOf(itemLlave))

	adjustments := w.Movements.OfType(entity.MovementTypeADJUSTMENT)
	require.Len(t, adjustments, 2)
	assert.Equal(t, int64(3), adjustments[0].Quantity)
	assert.Equal(t, int64(-5), adjustments[1].Quantity)
	assert.True(t, adjustments[1].TotalCost.Equal(decimal.NewFromInt(-150)))
}

func TestRegisterAdjustment_NoDejaSaldoNegativo(t *testing.T) {
	w := newWorld()
	uc := ledger.NewAdjustmentUseCase(w.Tx, w.Locations, nil)

	err := uc.RegisterAdjustment(context.Background(), "auditor-1", dto.AdjustmentRequest{
		ItemID: itemLlave, LocationID: bodega, Quantity: -13,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(12), w.Items.StockAt(itemLlave, bodega))
	assert.Empty(t, w.Movements.Log)
}

func TestRegisterAdjustment_BodegaInexistente(t *testing.T) {
	w := newWorld()
	uc := ledger.NewAdjustmentUseCase(w.Tx, w.Locations, nil)

	err := uc.RegisterAdjustment(context.Background(), "auditor-1", dto.AdjustmentRequest{
		ItemID: itemLlave, LocationID: "loc-fantasma", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReconcileCount_AplicaLaDiferencia(t *testing.T) {
	w := newWorld()
	uc := ledger.NewAdjustmentUseCase(w.Tx, w.Locations, nil)

	resp, err := uc.ReconcileCount(context.Background(), "auditor-1", dto.CountRequest{
		ItemID: itemLlave, LocationID: bodega, CountedQty: 9,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), resp.Previous)
	assert.Equal(t, int64(9), resp.Counted)
	assert.Equal(t, int64(-3), resp.Delta)
	assert.Equal(t, int64(9), resp.Total)
	assert.Equal(t, int64(9), w.Items.StockAt(itemLlave, bodega))

	audits := w.Movements.OfType(entity.MovementTypeAUDIT)
	require.Len(t, audits, 1)
	assert.Equal(t, int64(-3), audits[0].Quantity)
}

func TestReconcileCount_SinDiferenciaNoEscribe(t *testing.T) {
	w := newWorld()
	uc := ledger.NewAdjustmentUseCase(w.Tx, w.Locations, nil)

	resp, err := uc.ReconcileCount(context.Background(), "auditor-1", dto.CountRequest{
		ItemID: itemLlave, LocationID: bodega, CountedQty: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Delta)
	assert.Empty(t, w.Movements.Log, "un conteo sin diferencia no deja rastro")
	assert.Equal(t, 0, w.Items.UpsertCalls)
}

func TestApplyDelta_RecalculaElAgregadoCompleto(t *testing.T) {
	w := apptest.NewWorld()
	w.SeedItem(&entity.Item{
		ID:              itemLlave,
		UnitCost:        decimal.NewFromInt(30),
		StockByLocation: map[string]int64{"a": 4, "b": 6},
		TotalQuantity:   10,
	})
	item, err := w.Items.GetByID(itemLlave)
	require.NoError(t, err)

	total, err := ledger.ApplyDelta(w.Items, item, "a", -4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total, "el agregado es la suma del mapa, nunca un incremento aparte")
	assert.Equal(t, int64(0), w.Items.StockAt(itemLlave, "a"))
	assert.Equal(t, int64(6), w.Items.StockAt(itemLlave, "b"))
	assert.Equal(t, int64(6), w.Items.TotalOf(itemLlave))
}

func TestApplyDelta_RechazaSaldoNegativo(t *testing.T) {
	w := apptest.NewWorld()
	w.SeedItem(&entity.Item{
		ID:              itemLlave,
		StockByLocation: map[string]int64{"a": 2},
		TotalQuantity:   2,
	})
	item, err := w.Items.GetByID(itemLlave)
	require.NoError(t, err)

	_, err = ledger.ApplyDelta(w.Items, item, "a", -3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), w.Items.StockAt(itemLlave, "a"))
}

func TestAggregateByItem_SumaLineasDuplicadas(t *testing.T) {
	agg := ledger.AggregateByItem([]ledger.ItemDelta{
		{ItemID: "x", Quantity: 6},
		{ItemID: "x", Quantity: 4},
		{ItemID: "y", Quantity: 1},
	})
	assert.Equal(t, int64(10), agg["x"])
	assert.Equal(t, int64(1), agg["y"])
}
