package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/apptest"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// seedHistory deja el ítem con saldo 7 en la bodega tras: entrada 10, salida 10,
// devolución 7 y baja documental de 3.
func seedHistory(w *apptest.World) {
	base := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	w.SeedItem(&entity.Item{
		ID:              itemLlave,
		UnitCost:        decimal.NewFromInt(30),
		StockByLocation: map[string]int64{bodega: 7},
		TotalQuantity:   7,
	})
	movs := []*entity.Movement{
		{ID: "m1", ItemID: itemLlave, LocationID: bodega, Type: entity.MovementTypeIN, Quantity: 10, OccurredAt: base, CreatedBy: "u"},
		{ID: "m2", ItemID: itemLlave, LocationID: bodega, Type: entity.MovementTypeOUT, Quantity: -10, OrderCode: "SRV-2605-0001", OccurredAt: base.Add(time.Hour), CreatedBy: "u"},
		{ID: "m3", ItemID: itemLlave, LocationID: bodega, Type: entity.MovementTypeIN, Quantity: 7, OrderCode: "SRV-2605-0001", OccurredAt: base.Add(2 * time.Hour), CreatedBy: "u"},
		{ID: "m4", ItemID: itemLlave, LocationID: bodega, Type: entity.MovementTypeDEPRECIATION, Quantity: 3, OrderCode: "SRV-2605-0001", OccurredAt: base.Add(2 * time.Hour), CreatedBy: "u"},
	}
	for _, m := range movs {
		m.CreatedAt = m.OccurredAt
		_ = w.Movements.Create(m)
	}
}

func TestKardex_ReconstruyeSaldosDesdeElActual(t *testing.T) {
	w := apptest.NewWorld()
	seedHistory(w)
	uc := ledger.NewHistoryUseCase(w.Items, w.Movements)

	resp, err := uc.Kardex(context.Background(), itemLlave, bodega)
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.StartBalance)
	assert.Equal(t, int64(7), resp.Current)
	require.Len(t, resp.Entries, 4)

	// Saldos corrientes: 0 +10 -10 +7 +0(baja) = 10, 0, 7, 7.
	balances := []int64{10, 0, 7, 7}
	for i, e := range resp.Entries {
		assert.Equal(t, balances[i], e.Balance, "saldo tras el movimiento %d", i+1)
	}
	assert.Equal(t, string(entity.MovementTypeDEPRECIATION), resp.Entries[3].Movement.Type)
}

func TestListMovements_OrdenCronologicoYFiltroPorBodega(t *testing.T) {
	w := apptest.NewWorld()
	seedHistory(w)
	_ = w.Movements.Create(&entity.Movement{
		ID: "m5", ItemID: itemLlave, LocationID: "otra-bodega",
		Type: entity.MovementTypeIN, Quantity: 2,
		OccurredAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:  "u",
	})
	uc := ledger.NewHistoryUseCase(w.Items, w.Movements)

	all, err := uc.ListMovements(context.Background(), itemLlave, "")
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "m5", all[0].ID, "el más antiguo primero")

	filtered, err := uc.ListMovements(context.Background(), itemLlave, bodega)
	require.NoError(t, err)
	assert.Len(t, filtered, 4)
}

func TestKardex_ItemInexistente(t *testing.T) {
	w := apptest.NewWorld()
	uc := ledger.NewHistoryUseCase(w.Items, w.Movements)

	_, err := uc.Kardex(context.Background(), "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
