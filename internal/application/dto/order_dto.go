package dto

import "time"

// CreateOrderLineRequest línea solicitada al crear una orden.
type CreateOrderLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int64  `json:"quantity"`
}

// CreateOrderRequest payload de creación/despacho de una orden.
// kind: SERVICE | TRANSFER | RECEIPT.
type CreateOrderRequest struct {
	Kind          string                   `json:"kind"`
	SourceID      string                   `json:"source_id"`
	DestinationID string                   `json:"destination_id"`
	Notes         string                   `json:"notes"`
	Lines         []CreateOrderLineRequest `json:"lines"`
}

// ReceiveLineDelta delta de recepción para una línea. Son deltas, no valores
// absolutos: recepciones parciales repetidas suman y son seguras de reintentar.
type ReceiveLineDelta struct {
	ItemID      string `json:"item_id"`
	AddReturned int64  `json:"add_returned"`
	AddScrapped int64  `json:"add_scrapped"`
}

// ReceiveOrderRequest payload de recepción parcial o total.
type ReceiveOrderRequest struct {
	Deltas []ReceiveLineDelta `json:"deltas"`
}

// OrderLineResponse línea en respuestas.
type OrderLineResponse struct {
	ID       string `json:"id"`
	ItemID   string `json:"item_id"`
	Sent     int64  `json:"sent"`
	Returned int64  `json:"returned"`
	Scrapped int64  `json:"scrapped"`
}

// OrderResponse orden en respuestas.
type OrderResponse struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Kind          string              `json:"kind"`
	Status        string              `json:"status"`
	SourceID      string              `json:"source_id"`
	DestinationID string              `json:"destination_id,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	Lines         []OrderLineResponse `json:"lines"`
	CreatedBy     string              `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	DispatchedBy  string              `json:"dispatched_by,omitempty"`
	DispatchedAt  *time.Time          `json:"dispatched_at,omitempty"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
}
