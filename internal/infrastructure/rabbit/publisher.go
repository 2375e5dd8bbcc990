// Package rabbit publica eventos de dominio en RabbitMQ para consumidores
// externos (tableros en vivo, reportes). La publicación ocurre después del
// commit: si falla solo se pierde la notificación, nunca la consistencia.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jhoicas/almacen-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// Publisher conexión y canal AMQP con una cola durable de eventos.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewPublisher abre la conexión, el canal y declara la cola durable.
func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("conectar a RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("abrir canal: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declarar cola %s: %w", queue, err)
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish serializa el evento como JSON y lo envía a la cola.
func (p *Publisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// Close cierra canal y conexión.
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
