package repository

// SequenceRepository define el puerto del contador de secuencias por alcance
// (tipo + año + mes). ReserveNext debe ejecutarse dentro de la misma transacción
// que crea la entidad que consume el valor: si la transacción aborta, el
// incremento se revierte con ella.
type SequenceRepository interface {
	ReserveNext(kind string, year, month int) (int64, error)
}
