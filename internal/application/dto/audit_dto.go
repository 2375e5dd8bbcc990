package dto

// TransferGap hueco detectado en el log para una orden de traslado: falta la
// pata de salida, la de entrada, o ambas.
type TransferGap struct {
	OrderID       string `json:"order_id"`
	OrderCode     string `json:"order_code"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	MissingOut    int64  `json:"missing_out"` // cantidad TRANSFER_OUT faltante en origen
	MissingIn     int64  `json:"missing_in"`  // cantidad TRANSFER_IN faltante en destino
}

// AuditReport resultado de un escaneo de huecos en traslados.
type AuditReport struct {
	ScannedOrders int           `json:"scanned_orders"`
	Gaps          []TransferGap `json:"gaps"`
}

// RepairResponse resultado de una reparación explícita.
type RepairResponse struct {
	RepairedRecords int `json:"repaired_records"`
}
