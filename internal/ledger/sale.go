package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"crediario/m/domain"
)

// SaleInput is a finalization request. Produtos is the flat cart: one entry
// per unit, duplicates meaning multiple units of the same product. Any
// client-side total or price is ignored; the total is recomputed from the
// persisted product prices.
type SaleInput struct {
	ClienteID  int64
	UsuarioID  *int64 // operator who rang up the sale, when known
	Produtos   []int64
	Pagamento  string
	Parcelas   int64
	Assinatura *string
	DataVenda  string // optional, YYYY-MM-DD
}

// SaleResult reports the committed sale.
type SaleResult struct {
	VendaID int64
	Total   decimal.Decimal
}

type cartGroup struct {
	ProdutoID  int64
	Quantidade int64
}

// groupCart collapses the flat cart into per-product quantities, preserving
// first-appearance order.
func groupCart(produtos []int64) []cartGroup {
	index := make(map[int64]int, len(produtos))
	groups := make([]cartGroup, 0, len(produtos))
	for _, id := range produtos {
		if at, ok := index[id]; ok {
			groups[at].Quantidade++
			continue
		}
		index[id] = len(groups)
		groups = append(groups, cartGroup{ProdutoID: id, Quantidade: 1})
	}
	return groups
}

// resolveSaleTime combines a chosen calendar date with the current wall-clock
// time so same-day sales still order chronologically. With no date it is just
// now.
func resolveSaleTime(dataVenda string, now time.Time) (time.Time, error) {
	if dataVenda == "" {
		return now, nil
	}
	d, err := time.Parse("2006-01-02", dataVenda)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSaleDate, dataVenda)
	}
	return time.Date(d.Year(), d.Month(), d.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, time.UTC), nil
}

// splitInstallments divides total into n amounts summing exactly to total:
// the first n-1 are the division truncated to cents, the last absorbs the
// remainder.
func splitInstallments(total decimal.Decimal, n int64) []decimal.Decimal {
	base := total.Div(decimal.NewFromInt(n)).Truncate(2)
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = base
	}
	amounts[n-1] = total.Sub(base.Mul(decimal.NewFromInt(n - 1)))
	return amounts
}

// FinalizeSale validates the cart, recomputes the total from persisted
// prices, persists the sale with its line items, decrements stock and, for
// crediário, generates the installment schedule. Everything runs in a single
// transaction; any failure leaves the store untouched.
func (s *Service) FinalizeSale(ctx context.Context, in SaleInput) (SaleResult, error) {
	if len(in.Produtos) == 0 {
		return SaleResult{}, ErrEmptyCart
	}
	switch in.Pagamento {
	case domain.PagamentoDinheiro, domain.PagamentoCredito, domain.PagamentoCrediario:
	default:
		return SaleResult{}, fmt.Errorf("%w: %q", ErrInvalidPayment, in.Pagamento)
	}
	if in.Pagamento == domain.PagamentoCrediario && in.Parcelas < 1 {
		return SaleResult{}, ErrInvalidInstallments
	}

	when, err := resolveSaleTime(in.DataVenda, s.now())
	if err != nil {
		return SaleResult{}, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return SaleResult{}, fmt.Errorf("iniciando transacao: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		tx.Rebind(`SELECT EXISTS(SELECT 1 FROM clientes WHERE id = ?)`), in.ClienteID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("consultando cliente: %w", err)
	}
	if !exists {
		return SaleResult{}, fmt.Errorf("%w: id %d", ErrCustomerNotFound, in.ClienteID)
	}

	groups := groupCart(in.Produtos)
	total := decimal.Zero
	prices := make([]decimal.Decimal, len(groups))
	for i, g := range groups {
		var p domain.Product
		err := tx.GetContext(ctx, &p,
			tx.Rebind(`SELECT id, nome, marca, preco, estoque FROM produtos WHERE id = ?`), g.ProdutoID)
		if errors.Is(err, sql.ErrNoRows) {
			return SaleResult{}, fmt.Errorf("%w: id %d", ErrProductNotFound, g.ProdutoID)
		}
		if err != nil {
			return SaleResult{}, fmt.Errorf("consultando produto %d: %w", g.ProdutoID, err)
		}
		if p.Estoque < g.Quantidade {
			return SaleResult{}, fmt.Errorf("%w: produto %s", ErrInsufficientStock, p.Nome)
		}
		prices[i] = p.Preco
		total = total.Add(p.Preco.Mul(decimal.NewFromInt(g.Quantidade)))
	}

	var vendaID int64
	err = tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO vendas (cliente_id, usuario_id, total, pagamento, parcelas, assinatura, data_hora)
			VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		in.ClienteID, in.UsuarioID, total, in.Pagamento, in.Parcelas, in.Assinatura,
		when.Format(time.RFC3339)).Scan(&vendaID)
	if err != nil {
		return SaleResult{}, fmt.Errorf("registrando venda: %w", err)
	}

	for i, g := range groups {
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO vendas_produtos (venda_id, produto_id, quantidade, preco_unitario)
				VALUES (?, ?, ?, ?)`),
			vendaID, g.ProdutoID, g.Quantidade, prices[i])
		if err != nil {
			return SaleResult{}, fmt.Errorf("registrando item da venda: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE produtos SET estoque = estoque - ? WHERE id = ?`),
			g.Quantidade, g.ProdutoID)
		if err != nil {
			return SaleResult{}, fmt.Errorf("baixando estoque: %w", err)
		}
	}

	if in.Pagamento == domain.PagamentoCrediario && in.Parcelas >= 1 {
		for i, valor := range splitInstallments(total, in.Parcelas) {
			vencimento := when.AddDate(0, i+1, 0).Format("2006-01-02")
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`INSERT INTO parcelas_crediario (venda_id, valor, data_vencimento, status)
					VALUES (?, ?, ?, ?)`),
				vendaID, valor, vencimento, domain.ParcelaPendente)
			if err != nil {
				return SaleResult{}, fmt.Errorf("gerando parcela %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return SaleResult{}, fmt.Errorf("finalizando venda: %w", err)
	}
	return SaleResult{VendaID: vendaID, Total: total}, nil
}
