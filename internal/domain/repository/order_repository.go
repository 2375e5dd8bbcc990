package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// OrderRepository define el puerto de persistencia para órdenes y sus líneas.
type OrderRepository interface {
	// Create inserta la orden con sus líneas.
	Create(order *entity.Order) error
	// GetByID devuelve la orden con líneas (nil si no existe). Las transiciones
	// siempre releen la orden dentro de su transacción, nunca reutilizan una copia.
	GetByID(id string) (*entity.Order, error)
	GetByCode(code string) (*entity.Order, error)
	// Update persiste cabecera y contadores de líneas tras una transición.
	Update(order *entity.Order) error
	// ListByKindAndStatus lista órdenes de un tipo en cualquiera de los estados dados.
	ListByKindAndStatus(kind entity.OrderKind, statuses []entity.OrderStatus) ([]*entity.Order, error)
}
