package entity

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidMovement registro incoherente (tipo, signo o contraparte).
var ErrInvalidMovement = errors.New("movimiento de inventario inválido")

// MovementType tipo cerrado de movimiento del libro de inventario.
// Todo switch sobre MovementType debe ser exhaustivo (ver StockEffect).
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeIN           MovementType = "IN"           // entrada (recepción, devolución de servicio)
	MovementTypeOUT          MovementType = "OUT"          // salida a servicio
	MovementTypeTransferIN   MovementType = "TRANSFER_IN"  // entrada por traslado (destino)
	MovementTypeTransferOUT  MovementType = "TRANSFER_OUT" // salida por traslado (origen)
	MovementTypeADJUSTMENT   MovementType = "ADJUSTMENT"   // ajuste manual con signo
	MovementTypeRETURN       MovementType = "RETURN"       // reverso por cancelación de despacho
	MovementTypeDEPRECIATION MovementType = "DEPRECIATION" // baja de lo despachado a servicio (no retorna)
	MovementTypeSCRAP        MovementType = "SCRAP"        // pérdida en tránsito de un traslado
	MovementTypeAUDIT        MovementType = "AUDIT"        // reconciliación por conteo físico
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeTransferIN, MovementTypeTransferOUT,
		MovementTypeADJUSTMENT, MovementTypeRETURN, MovementTypeDEPRECIATION,
		MovementTypeSCRAP, MovementTypeAUDIT:
		return true
	}
	return false
}

// IsTransfer indica si el tipo es una de las dos patas de un traslado.
// Solo estos tipos llevan RelatedLocation (bodega contraparte).
func (t MovementType) IsTransfer() bool {
	return t == MovementTypeTransferIN || t == MovementTypeTransferOUT
}

// Direction signo esperado de la cantidad según el tipo: +1 entra, -1 sale,
// 0 para tipos que no alteran saldo (bajas documentales) o de signo libre (ajustes).
func (t MovementType) Direction() int {
	switch t {
	case MovementTypeIN, MovementTypeTransferIN, MovementTypeRETURN:
		return 1
	case MovementTypeOUT, MovementTypeTransferOUT:
		return -1
	case MovementTypeADJUSTMENT, MovementTypeAUDIT, MovementTypeDEPRECIATION, MovementTypeSCRAP:
		return 0
	}
	return 0
}

// Movement registro inmutable del log de movimientos. Una vez escrito nunca se
// actualiza; solo el motor de auditoría puede insertar contrapartes faltantes.
type Movement struct {
	ID              string
	ItemID          string
	LocationID      string
	Type            MovementType
	Quantity        int64           // con signo para tipos que alteran saldo; magnitud para bajas
	UnitCost        decimal.Decimal // costo unitario al momento del movimiento
	TotalCost       decimal.Decimal // valorización del movimiento (bajas = valor dado de baja)
	OrderCode       string          // código de la orden que lo originó (vacío en ajustes/conteos)
	RelatedLocation string          // solo TRANSFER_IN/TRANSFER_OUT: bodega contraparte
	OccurredAt      time.Time
	CreatedAt       time.Time
	CreatedBy       string
}

// StockEffect delta con signo que el movimiento aplica al saldo de su bodega.
// DEPRECIATION y SCRAP son cero: la cantidad que documentan ya salió del stock
// en el OUT/TRANSFER_OUT que las originó; solo completan el rastro histórico.
func (m *Movement) StockEffect() int64 {
	switch m.Type {
	case MovementTypeIN, MovementTypeOUT, MovementTypeTransferIN, MovementTypeTransferOUT,
		MovementTypeRETURN, MovementTypeADJUSTMENT, MovementTypeAUDIT:
		return m.Quantity
	case MovementTypeDEPRECIATION, MovementTypeSCRAP:
		return 0
	}
	return 0
}

// Validate verifica coherencia interna del registro antes de persistirlo.
func (m *Movement) Validate() error {
	if m.ItemID == "" || m.LocationID == "" || !m.Type.Valid() {
		return ErrInvalidMovement
	}
	if m.Quantity == 0 {
		return ErrInvalidMovement
	}
	if d := m.Type.Direction(); d > 0 && m.Quantity < 0 || d < 0 && m.Quantity > 0 {
		return ErrInvalidMovement
	}
	if m.Type.IsTransfer() && m.RelatedLocation == "" {
		return ErrInvalidMovement
	}
	if !m.Type.IsTransfer() && m.RelatedLocation != "" {
		return ErrInvalidMovement
	}
	return nil
}
