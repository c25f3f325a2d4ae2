package domain

// Observation is free text attached to a customer, append-only.
type Observation struct {
	ID        int64  `db:"id" json:"id"`
	ClienteID int64  `db:"cliente_id" json:"cliente_id"`
	Texto     string `db:"texto" json:"texto"`
	DataHora  string `db:"data_hora" json:"data_hora"`
}
