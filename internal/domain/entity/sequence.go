package entity

// SequenceCounter contador mensual por tipo de orden. El valor emitido dentro
// de un alcance es estrictamente creciente y nunca se reutiliza; si la
// transacción que lo consume aborta, el incremento se revierte con ella
// (los huecos por reintento son tolerables, los duplicados no).
type SequenceCounter struct {
	Kind  string // tipo de orden (SERVICE, TRANSFER, RECEIPT)
	Year  int
	Month int
	Value int64
}
