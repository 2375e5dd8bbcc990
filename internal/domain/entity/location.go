package entity

import "time"

// Location representa una bodega, sede o taller donde se almacena inventario.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
