// Package sequence genera los códigos legibles de las órdenes a partir del
// contador mensual reservado dentro de la misma transacción que crea la orden.
package sequence

import (
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Prefix prefijo del código según el tipo de orden.
func Prefix(kind entity.OrderKind) string {
	switch kind {
	case entity.OrderKindSERVICE:
		return "SRV"
	case entity.OrderKindTRANSFER:
		return "TRS"
	case entity.OrderKindRECEIPT:
		return "REC"
	}
	return "ORD"
}

// Scope alcance del contador que consume la orden: tipo + año + mes.
func Scope(kind entity.OrderKind, t time.Time) (string, int, int) {
	return string(kind), t.Year(), int(t.Month())
}

// Format construye el código de orden de forma determinista y sin colisiones:
// PREFIJO-AAMM-NNNN con campos de ancho fijo. El ancho fijo del mes y del
// consecutivo evita que noviembre+seq 1 y enero+seq 11 rindan los mismos dígitos.
// Consecutivos por encima de 9999 se imprimen completos sin truncar.
func Format(kind entity.OrderKind, t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%02d%02d-%04d", Prefix(kind), t.Year()%100, int(t.Month()), seq)
}
