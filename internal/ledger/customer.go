package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"crediario/m/domain"
)

// DeleteCustomer removes a customer and all of their history in one
// transaction. Stock is restored from every line item before the sales are
// deleted, so cancelling the history never loses inventory. The customer row
// goes last since everything else references it.
func (s *Service) DeleteCustomer(ctx context.Context, clienteID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("iniciando transacao: %w", err)
	}
	defer tx.Rollback()

	var vendaIDs []int64
	err = tx.SelectContext(ctx, &vendaIDs,
		tx.Rebind(`SELECT id FROM vendas WHERE cliente_id = ?`), clienteID)
	if err != nil {
		return fmt.Errorf("consultando vendas do cliente: %w", err)
	}

	for _, vendaID := range vendaIDs {
		var itens []domain.SaleItem
		err = tx.SelectContext(ctx, &itens,
			tx.Rebind(`SELECT id, venda_id, produto_id, quantidade, preco_unitario
				FROM vendas_produtos WHERE venda_id = ?`), vendaID)
		if err != nil {
			return fmt.Errorf("consultando itens da venda %d: %w", vendaID, err)
		}
		for _, item := range itens {
			_, err = tx.ExecContext(ctx,
				tx.Rebind(`UPDATE produtos SET estoque = estoque + ? WHERE id = ?`),
				item.Quantidade, item.ProdutoID)
			if err != nil {
				return fmt.Errorf("devolvendo estoque do produto %d: %w", item.ProdutoID, err)
			}
		}
		// Line items and installments go with the sale via ON DELETE CASCADE.
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM vendas WHERE id = ?`), vendaID)
		if err != nil {
			return fmt.Errorf("apagando venda %d: %w", vendaID, err)
		}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM observacoes WHERE cliente_id = ?`), clienteID)
	if err != nil {
		return fmt.Errorf("apagando observacoes: %w", err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM clientes WHERE id = ?`), clienteID)
	if err != nil {
		return fmt.Errorf("apagando cliente: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("concluindo exclusao: %w", err)
	}
	return nil
}

// SaleLineView is a line item joined with its product for history display.
type SaleLineView struct {
	ProdutoID     int64           `db:"produto_id" json:"id"`
	Nome          string          `db:"nome" json:"nome"`
	Marca         string          `db:"marca" json:"marca"`
	Quantidade    int64           `db:"quantidade" json:"quantidade"`
	PrecoUnitario decimal.Decimal `db:"preco_unitario" json:"preco_unitario"`
	VendaID       int64           `db:"venda_id" json:"-"`
}

// SaleView is a read-only aggregate assembled from separate reads; the
// underlying sale row is never mutated.
type SaleView struct {
	domain.Sale
	Produtos        []SaleLineView       `json:"produtos"`
	DetalheParcelas []domain.Installment `json:"detalheParcelas,omitempty"`
}

// History is everything shown on a customer's record.
type History struct {
	Vendas      []SaleView           `json:"vendas"`
	Observacoes []domain.Observation `json:"observacoes"`
}

// CustomerHistory loads the customer's sales (newest first) with their line
// items, the installment detail of crediário sales, and the observations.
func (s *Service) CustomerHistory(ctx context.Context, clienteID int64) (History, error) {
	history := History{Vendas: []SaleView{}, Observacoes: []domain.Observation{}}

	var vendas []domain.Sale
	err := s.db.SelectContext(ctx, &vendas,
		s.db.Rebind(`SELECT id, cliente_id, usuario_id, total, pagamento, parcelas, assinatura, data_hora
			FROM vendas WHERE cliente_id = ? ORDER BY data_hora DESC`), clienteID)
	if err != nil {
		return History{}, fmt.Errorf("consultando vendas: %w", err)
	}

	if len(vendas) > 0 {
		vendaIDs := make([]int64, len(vendas))
		for i, v := range vendas {
			vendaIDs[i] = v.ID
		}

		query, args, err := sqlx.In(`SELECT vp.venda_id, vp.produto_id, vp.quantidade, vp.preco_unitario,
				p.nome, p.marca
			FROM vendas_produtos vp
			JOIN produtos p ON p.id = vp.produto_id
			WHERE vp.venda_id IN (?)`, vendaIDs)
		if err != nil {
			return History{}, fmt.Errorf("montando consulta de itens: %w", err)
		}
		var linhas []SaleLineView
		if err := s.db.SelectContext(ctx, &linhas, s.db.Rebind(query), args...); err != nil {
			return History{}, fmt.Errorf("consultando itens das vendas: %w", err)
		}
		linhasPorVenda := make(map[int64][]SaleLineView)
		for _, l := range linhas {
			linhasPorVenda[l.VendaID] = append(linhasPorVenda[l.VendaID], l)
		}

		query, args, err = sqlx.In(`SELECT id, venda_id, valor, data_vencimento, status
			FROM parcelas_crediario WHERE venda_id IN (?) ORDER BY data_vencimento ASC`, vendaIDs)
		if err != nil {
			return History{}, fmt.Errorf("montando consulta de parcelas: %w", err)
		}
		var parcelas []domain.Installment
		if err := s.db.SelectContext(ctx, &parcelas, s.db.Rebind(query), args...); err != nil {
			return History{}, fmt.Errorf("consultando parcelas: %w", err)
		}
		parcelasPorVenda := make(map[int64][]domain.Installment)
		for _, p := range parcelas {
			parcelasPorVenda[p.VendaID] = append(parcelasPorVenda[p.VendaID], p)
		}

		for _, v := range vendas {
			view := SaleView{Sale: v, Produtos: linhasPorVenda[v.ID]}
			if view.Produtos == nil {
				view.Produtos = []SaleLineView{}
			}
			if v.Pagamento == domain.PagamentoCrediario {
				view.DetalheParcelas = parcelasPorVenda[v.ID]
			}
			history.Vendas = append(history.Vendas, view)
		}
	}

	err = s.db.SelectContext(ctx, &history.Observacoes,
		s.db.Rebind(`SELECT id, cliente_id, texto, data_hora
			FROM observacoes WHERE cliente_id = ? ORDER BY data_hora DESC`), clienteID)
	if err != nil {
		return History{}, fmt.Errorf("consultando observacoes: %w", err)
	}
	return history, nil
}
