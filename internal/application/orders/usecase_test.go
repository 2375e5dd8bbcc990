package orders_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/apptest"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/orders"
	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/sequence"
)

const (
	bodegaCentral = "loc-central"
	tallerNorte   = "loc-taller"
	itemTaladro   = "item-taladro"
)

// newWorld prepara dos bodegas y un ítem con 10 unidades en la central.
func newWorld() *apptest.World {
	w := apptest.NewWorld()
	w.SeedLocation(bodegaCentral, "Bodega Central")
	w.SeedLocation(tallerNorte, "Taller Norte")
	w.SeedItem(&entity.Item{
		ID:              itemTaladro,
		SKU:             "TAL-001",
		Name:            "Taladro percutor",
		UnitCost:        decimal.NewFromInt(50),
		StockByLocation: map[string]int64{bodegaCentral: 10},
		TotalQuantity:   10,
	})
	return w
}

func newUseCase(w *apptest.World, events ports.EventPublisher) *orders.UseCase {
	return orders.NewUseCase(w.Tx, w.Orders, w.Locations, events)
}

func serviceRequest(qty int64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Kind:          string(entity.OrderKindSERVICE),
		SourceID:      bodegaCentral,
		DestinationID: tallerNorte,
		Lines:         []dto.CreateOrderLineRequest{{ItemID: itemTaladro, Quantity: qty}},
	}
}

func transferRequest(qty int64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Kind:          string(entity.OrderKindTRANSFER),
		SourceID:      bodegaCentral,
		DestinationID: tallerNorte,
		Lines:         []dto.CreateOrderLineRequest{{ItemID: itemTaladro, Quantity: qty}},
	}
}

func TestCreateAndDispatch_ServicioDescuentaStockYRegistraSalida(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	resp, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)

	assert.Equal(t, string(entity.OrderStatusDISPATCHED), resp.Status)
	assert.Equal(t, sequence.Format(entity.OrderKindSERVICE, time.Now(), 1), resp.Code)
	assert.Equal(t, int64(0), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Equal(t, int64(0), w.Items.TotalOf(itemTaladro))

	outs := w.Movements.OfType(entity.MovementTypeOUT)
	require.Len(t, outs, 1)
	assert.Equal(t, int64(-10), outs[0].Quantity)
	assert.Equal(t, resp.Code, outs[0].OrderCode)
	assert.True(t, outs[0].TotalCost.Equal(decimal.NewFromInt(-500)),
		"la salida debe valorizarse a costo unitario: %s", outs[0].TotalCost)
}

func TestCreateAndDispatch_TrasladoQuedaEnBorradorSinTocarStock(t *testing.T) {
	w := newWorld()
	recorder := &apptest.RecordingPublisher{}
	uc := newUseCase(w, recorder)

	resp, err := uc.CreateAndDispatch(context.Background(), "user-1", transferRequest(4))
	require.NoError(t, err)

	assert.Equal(t, string(entity.OrderStatusDRAFT), resp.Status)
	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Empty(t, w.Movements.Log)
	assert.Empty(t, recorder.Events, "un borrador no publica evento de despacho")
}

func TestDispatch_TrasladoAplicaEfectoUnaSolaVez(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", transferRequest(4))
	require.NoError(t, err)

	resp, err := uc.Dispatch(context.Background(), created.ID, "jefe-1")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusDISPATCHED), resp.Status)
	assert.Equal(t, "jefe-1", resp.DispatchedBy)
	assert.Equal(t, int64(6), w.Items.StockAt(itemTaladro, bodegaCentral))

	outs := w.Movements.OfType(entity.MovementTypeTransferOUT)
	require.Len(t, outs, 1)
	assert.Equal(t, int64(-4), outs[0].Quantity)
	assert.Equal(t, tallerNorte, outs[0].RelatedLocation)

	// Repetir la aprobación no debe volver a descontar.
	_, err = uc.Dispatch(context.Background(), created.ID, "jefe-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(6), w.Items.StockAt(itemTaladro, bodegaCentral))
}

func TestCreateAndDispatch_FaltanteAbortaSinEscribir(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	_, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(15))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var shortage *domain.StockShortageError
	require.ErrorAs(t, err, &shortage)
	require.Len(t, shortage.Shortages, 1)
	assert.Equal(t, int64(15), shortage.Shortages[0].Requested)
	assert.Equal(t, int64(10), shortage.Shortages[0].Available)

	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Empty(t, w.Movements.Log)
	assert.Equal(t, 0, w.Orders.Count())
}

func TestCreateAndDispatch_LineasDelMismoItemSeAgregan(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	in := serviceRequest(6)
	in.Lines = append(in.Lines, dto.CreateOrderLineRequest{ItemID: itemTaladro, Quantity: 4})

	_, err := uc.CreateAndDispatch(context.Background(), "user-1", in)
	require.NoError(t, err)

	// Una sola escritura de stock para las dos líneas, pero un movimiento por línea.
	assert.Equal(t, 1, w.Items.UpsertCalls)
	assert.Equal(t, int64(0), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Len(t, w.Movements.OfType(entity.MovementTypeOUT), 2)
}

func TestCreateAndDispatch_TrasladoMismaBodegaInvalido(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	in := transferRequest(1)
	in.DestinationID = in.SourceID
	_, err := uc.CreateAndDispatch(context.Background(), "user-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReceive_ServicioConDevolucionYBaja(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)

	resp, err := uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 7, AddScrapped: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.OrderStatusCOMPLETED), resp.Status)
	require.NotNil(t, resp.ClosedAt)
	// Solo lo devuelto vuelve al stock; la baja queda documentada sin efecto de saldo.
	assert.Equal(t, int64(7), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Equal(t, int64(7), w.Items.TotalOf(itemTaladro))

	ins := w.Movements.OfType(entity.MovementTypeIN)
	require.Len(t, ins, 1)
	assert.Equal(t, int64(7), ins[0].Quantity)

	bajas := w.Movements.OfType(entity.MovementTypeDEPRECIATION)
	require.Len(t, bajas, 1)
	assert.Equal(t, int64(3), bajas[0].Quantity)
	assert.True(t, bajas[0].TotalCost.Equal(decimal.NewFromInt(150)),
		"la baja se valoriza a costo unitario: %s", bajas[0].TotalCost)
	assert.Equal(t, int64(0), bajas[0].StockEffect(), "la baja no altera saldos")
}

func TestReceive_ParcialesSumanHastaCompletar(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)

	resp, err := uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusPartialReturn), resp.Status)
	assert.Nil(t, resp.ClosedAt)
	assert.Equal(t, int64(5), w.Items.StockAt(itemTaladro, bodegaCentral))

	resp, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusCOMPLETED), resp.Status)
	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))

	// Una orden completada no admite más recepciones.
	_, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReceive_DesbordeDeLineaNoEscribe(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)

	_, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 5}},
	})
	require.NoError(t, err)

	_, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 6}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLineOverflow)

	var overflow *domain.LineOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, int64(10), overflow.Sent)
	assert.Equal(t, int64(5), overflow.Returned)

	assert.Equal(t, int64(5), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Len(t, w.Movements.OfType(entity.MovementTypeIN), 1)
}

func TestReceive_TrasladoConPerdidaEnTransito(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", transferRequest(4))
	require.NoError(t, err)
	_, err = uc.Dispatch(context.Background(), created.ID, "jefe-1")
	require.NoError(t, err)

	resp, err := uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 3, AddScrapped: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.OrderStatusCOMPLETED), resp.Status)
	assert.Equal(t, int64(6), w.Items.StockAt(itemTaladro, bodegaCentral))
	assert.Equal(t, int64(3), w.Items.StockAt(itemTaladro, tallerNorte))
	assert.Equal(t, int64(9), w.Items.TotalOf(itemTaladro), "la unidad perdida sale del agregado")

	ins := w.Movements.OfType(entity.MovementTypeTransferIN)
	require.Len(t, ins, 1)
	assert.Equal(t, int64(3), ins[0].Quantity)
	assert.Equal(t, bodegaCentral, ins[0].RelatedLocation)

	scraps := w.Movements.OfType(entity.MovementTypeSCRAP)
	require.Len(t, scraps, 1)
	assert.Equal(t, int64(1), scraps[0].Quantity)
}

func TestReceive_RecepcionDeCompraNoAdmiteBaja(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", dto.CreateOrderRequest{
		Kind:          string(entity.OrderKindRECEIPT),
		DestinationID: tallerNorte,
		Lines:         []dto.CreateOrderLineRequest{{ItemID: itemTaladro, Quantity: 8}},
	})
	require.NoError(t, err)
	// La recepción de compra nace despachada y no mueve stock hasta recibir.
	assert.Equal(t, string(entity.OrderStatusDISPATCHED), created.Status)
	assert.Equal(t, int64(0), w.Items.StockAt(itemTaladro, tallerNorte))

	_, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 7, AddScrapped: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: itemTaladro, AddReturned: 8}},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusCOMPLETED), resp.Status)
	assert.Equal(t, int64(8), w.Items.StockAt(itemTaladro, tallerNorte))
	assert.Equal(t, int64(18), w.Items.TotalOf(itemTaladro))
}

func TestCancel_DespachadaReponeStockConReverso(t *testing.T) {
	w := newWorld()
	recorder := &apptest.RecordingPublisher{}
	uc := newUseCase(w, recorder)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)
	require.Equal(t, int64(0), w.Items.StockAt(itemTaladro, bodegaCentral))

	resp, err := uc.Cancel(context.Background(), created.ID, "user-3")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusCANCELLED), resp.Status)
	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))

	returns := w.Movements.OfType(entity.MovementTypeRETURN)
	require.Len(t, returns, 1)
	assert.Equal(t, int64(10), returns[0].Quantity)
	assert.Equal(t, created.Code, returns[0].OrderCode)

	// Cancelar dos veces no repone dos veces.
	_, err = uc.Cancel(context.Background(), created.ID, "user-3")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))

	var types []string
	for _, e := range recorder.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []string{ports.EventOrderDispatched, ports.EventOrderCancelled}, types)
}

func TestCancel_BorradorNoGeneraReverso(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", transferRequest(4))
	require.NoError(t, err)

	resp, err := uc.Cancel(context.Background(), created.ID, "user-3")
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusCANCELLED), resp.Status)
	assert.Empty(t, w.Movements.Log, "un borrador nunca movió stock, no hay nada que revertir")
	assert.Equal(t, int64(10), w.Items.StockAt(itemTaladro, bodegaCentral))
}

func TestCreateAndDispatch_ConsecutivosPorAlcance(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	first, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(2))
	require.NoError(t, err)
	second, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(3))
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, sequence.Format(entity.OrderKindSERVICE, now, 1), first.Code)
	assert.Equal(t, sequence.Format(entity.OrderKindSERVICE, now, 2), second.Code)

	// Un traslado usa su propio alcance: arranca de nuevo en 1.
	transfer, err := uc.CreateAndDispatch(context.Background(), "user-1", transferRequest(1))
	require.NoError(t, err)
	assert.Equal(t, sequence.Format(entity.OrderKindTRANSFER, now, 1), transfer.Code)
}

func TestReceive_ItemFueraDeLaOrden(t *testing.T) {
	w := newWorld()
	uc := newUseCase(w, nil)

	created, err := uc.CreateAndDispatch(context.Background(), "user-1", serviceRequest(10))
	require.NoError(t, err)

	_, err = uc.Receive(context.Background(), created.ID, "user-2", dto.ReceiveOrderRequest{
		Deltas: []dto.ReceiveLineDelta{{ItemID: "item-fantasma", AddReturned: 1}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
