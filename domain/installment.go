package domain

import "github.com/shopspring/decimal"

const (
	ParcelaPendente = "pendente"
	ParcelaPaga     = "paga"
)

// Installment due dates are stored as YYYY-MM-DD text so lexicographic
// ordering matches chronological ordering on every backend.
type Installment struct {
	ID             int64           `db:"id" json:"id"`
	VendaID        int64           `db:"venda_id" json:"venda_id"`
	Valor          decimal.Decimal `db:"valor" json:"valor"`
	DataVencimento string          `db:"data_vencimento" json:"data_vencimento"`
	Status         string          `db:"status" json:"status"`
}
