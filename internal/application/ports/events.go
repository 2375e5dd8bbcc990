package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados tras un commit exitoso.
const (
	EventOrderDispatched = "order.dispatched"
	EventOrderReceived   = "order.received"
	EventOrderCancelled  = "order.cancelled"
	EventStockAdjusted   = "stock.adjusted"
	EventAuditRepaired   = "audit.repaired"
)

// DomainEvent notificación para consumidores externos (UI en vivo, reportes).
// Nunca forma parte del mecanismo de consistencia: se emite después del commit
// y su pérdida no afecta la corrección del libro.
type DomainEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id,omitempty"`
	OrderCode  string    `json:"order_code,omitempty"`
	Status     string    `json:"status,omitempty"`
	ItemID     string    `json:"item_id,omitempty"`
	LocationID string    `json:"location_id,omitempty"`
	Quantity   int64     `json:"quantity,omitempty"`
	ActorID    string    `json:"actor_id,omitempty"`
	At         time.Time `json:"at"`
}

// EventPublisher puerto opcional de publicación de eventos post-commit.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
