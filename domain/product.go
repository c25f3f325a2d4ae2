package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID      int64           `db:"id" json:"id"`
	Nome    string          `db:"nome" json:"nome"`
	Marca   string          `db:"marca" json:"marca"`
	Preco   decimal.Decimal `db:"preco" json:"preco"`
	Estoque int64           `db:"estoque" json:"estoque"`
}
