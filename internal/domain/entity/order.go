package entity

import "time"

// OrderKind tipo de orden de trabajo sobre inventario.
type OrderKind string

// Tipos de orden.
const (
	OrderKindSERVICE  OrderKind = "SERVICE"  // salida a servicio: descuenta stock al crear
	OrderKindTRANSFER OrderKind = "TRANSFER" // traslado entre bodegas: requiere aprobación (DRAFT)
	OrderKindRECEIPT  OrderKind = "RECEIPT"  // recepción de compra: el stock entra al recibir
)

// Valid indica si el tipo pertenece al conjunto cerrado.
func (k OrderKind) Valid() bool {
	switch k {
	case OrderKindSERVICE, OrderKindTRANSFER, OrderKindRECEIPT:
		return true
	}
	return false
}

// ApprovalGated indica si el efecto de stock se aplica en la transición de
// aprobación (Dispatch) en lugar de en la creación.
func (k OrderKind) ApprovalGated() bool {
	return k == OrderKindTRANSFER
}

// OrderStatus estado del ciclo de vida de una orden.
type OrderStatus string

// Estados. DRAFT y los terminales (COMPLETED, CANCELLED) son absorbentes para
// el motor; PARTIAL_RETURN es estable y admite más recepciones parciales.
const (
	OrderStatusDRAFT         OrderStatus = "DRAFT"
	OrderStatusDISPATCHED    OrderStatus = "DISPATCHED"
	OrderStatusPartialReturn OrderStatus = "PARTIAL_RETURN"
	OrderStatusCOMPLETED     OrderStatus = "COMPLETED"
	OrderStatusCANCELLED     OrderStatus = "CANCELLED"
)

// Terminal indica si el estado no admite más transiciones.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCOMPLETED || s == OrderStatusCANCELLED
}

// OrderLine línea de una orden. La semántica de los contadores depende del tipo:
// SERVICE: Sent=despachado, Returned=devuelto, Scrapped=dado de baja.
// TRANSFER: Sent=despachado, Returned=recibido en destino, Scrapped=perdido en tránsito.
// RECEIPT: Sent=pedido, Returned=recibido (Scrapped no aplica).
// Invariante en todo momento: Returned + Scrapped <= Sent.
type OrderLine struct {
	ID       string
	OrderID  string
	ItemID   string
	Sent     int64
	Returned int64
	Scrapped int64
}

// Outstanding cantidad aún pendiente de recibir o dar de baja.
func (l *OrderLine) Outstanding() int64 {
	return l.Sent - l.Returned - l.Scrapped
}

// Order entidad genérica de flujo de trabajo que reserva o mueve stock.
// Se crea en el despacho y solo muta por transiciones receive/cancel hasta
// llegar a un estado terminal.
type Order struct {
	ID            string
	Code          string // código legible emitido por el contador de secuencia
	Kind          OrderKind
	Status        OrderStatus
	SourceID      string // bodega origen (SERVICE, TRANSFER)
	DestinationID string // bodega destino (TRANSFER, RECEIPT); en SERVICE identifica el servicio/taller
	Notes         string
	Lines         []OrderLine
	CreatedBy     string
	CreatedAt     time.Time
	DispatchedBy  string
	DispatchedAt  *time.Time
	ClosedAt      *time.Time
	UpdatedAt     time.Time
}

// RecomputeStatus recalcula el estado a partir de las líneas: COMPLETED cuando
// toda línea satisface Returned+Scrapped == Sent, si no PARTIAL_RETURN.
func (o *Order) RecomputeStatus() OrderStatus {
	for i := range o.Lines {
		if o.Lines[i].Outstanding() > 0 {
			return OrderStatusPartialReturn
		}
	}
	return OrderStatusCOMPLETED
}

// TotalSent suma de lo enviado en todas las líneas.
func (o *Order) TotalSent() int64 {
	var total int64
	for i := range o.Lines {
		total += o.Lines[i].Sent
	}
	return total
}

// TotalReturned suma de lo devuelto/recibido en todas las líneas.
func (o *Order) TotalReturned() int64 {
	var total int64
	for i := range o.Lines {
		total += o.Lines[i].Returned
	}
	return total
}
