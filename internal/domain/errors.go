package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto de concurrencia: reintentos agotados")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrLineOverflow      = errors.New("la cantidad recibida excede lo despachado")
)

// StockShortage detalle de un ítem sin stock suficiente en una bodega.
type StockShortage struct {
	ItemID     string
	LocationID string
	Requested  int64
	Available  int64
}

// StockShortageError agrupa todos los ítems insuficientes de una operación.
// Se detecta antes de cualquier escritura, por lo que la transacción aborta limpia.
type StockShortageError struct {
	Shortages []StockShortage
}

func (e *StockShortageError) Error() string {
	if len(e.Shortages) == 1 {
		s := e.Shortages[0]
		return fmt.Sprintf("stock insuficiente: ítem %s en bodega %s (solicitado %d, disponible %d)",
			s.ItemID, s.LocationID, s.Requested, s.Available)
	}
	return fmt.Sprintf("stock insuficiente en %d ítems", len(e.Shortages))
}

// Is permite errors.Is(err, domain.ErrInsufficientStock).
func (e *StockShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LineOverflowError detalle de una línea cuyo acumulado devuelto+baja superaría lo enviado.
type LineOverflowError struct {
	OrderID  string
	ItemID   string
	Sent     int64
	Returned int64
	Scrapped int64
	AddQty   int64
}

func (e *LineOverflowError) Error() string {
	return fmt.Sprintf("línea del ítem %s en orden %s: devuelto %d + baja %d + delta %d excede lo enviado %d",
		e.ItemID, e.OrderID, e.Returned, e.Scrapped, e.AddQty, e.Sent)
}

// Is permite errors.Is(err, domain.ErrLineOverflow).
func (e *LineOverflowError) Is(target error) bool {
	return target == ErrLineOverflow
}
