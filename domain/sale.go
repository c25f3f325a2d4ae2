package domain

import "github.com/shopspring/decimal"

// Payment methods accepted at the register. Only crediario sales carry an
// installment schedule.
const (
	PagamentoDinheiro  = "dinheiro"
	PagamentoCredito   = "credito"
	PagamentoCrediario = "crediario"
)

type Sale struct {
	ID         int64           `db:"id" json:"id"`
	ClienteID  int64           `db:"cliente_id" json:"cliente_id"`
	UsuarioID  *int64          `db:"usuario_id" json:"usuario_id,omitempty"`
	Total      decimal.Decimal `db:"total" json:"total"`
	Pagamento  string          `db:"pagamento" json:"pagamento"`
	Parcelas   int64           `db:"parcelas" json:"parcelas"`
	Assinatura *string         `db:"assinatura" json:"assinatura,omitempty"`
	DataHora   string          `db:"data_hora" json:"data_hora"`
}

// SaleItem records quantity and the unit price at the time of sale; the
// price is copied from the product, never referenced live.
type SaleItem struct {
	ID            int64           `db:"id" json:"id"`
	VendaID       int64           `db:"venda_id" json:"venda_id"`
	ProdutoID     int64           `db:"produto_id" json:"produto_id"`
	Quantidade    int64           `db:"quantidade" json:"quantidade"`
	PrecoUnitario decimal.Decimal `db:"preco_unitario" json:"preco_unitario"`
}
