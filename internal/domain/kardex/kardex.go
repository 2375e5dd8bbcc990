// Package kardex reconstruye el saldo histórico de un ítem a partir del log de
// movimientos. El saldo actual nunca se toma como contador independiente: el
// punto de partida se deriva restando al saldo actual el efecto neto de todos
// los movimientos conocidos, y luego se reproduce el log hacia adelante.
package kardex

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// Entry un movimiento con el saldo corriente después de aplicarlo.
type Entry struct {
	Movement *entity.Movement
	Balance  int64
}

// NetEffect efecto neto con signo de un conjunto de movimientos.
func NetEffect(movements []*entity.Movement) int64 {
	var net int64
	for _, m := range movements {
		net += m.StockEffect()
	}
	return net
}

// Reconstruct deriva el saldo inicial histórico y el saldo corriente en cada
// punto del historial. movements debe venir ordenado por fecha ascendente
// (como lo entrega el repositorio de movimientos).
func Reconstruct(current int64, movements []*entity.Movement) (start int64, entries []Entry) {
	start = current - NetEffect(movements)
	balance := start
	entries = make([]Entry, 0, len(movements))
	for _, m := range movements {
		balance += m.StockEffect()
		entries = append(entries, Entry{Movement: m, Balance: balance})
	}
	return start, entries
}
