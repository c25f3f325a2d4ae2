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

// MarkInstallmentPaid sets the installment status to paid and returns the
// updated row. Marking an already-paid installment is a no-op success.
func (s *Service) MarkInstallmentPaid(ctx context.Context, id int64) (domain.Installment, error) {
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`UPDATE parcelas_crediario SET status = ? WHERE id = ?`),
		domain.ParcelaPaga, id)
	if err != nil {
		return domain.Installment{}, fmt.Errorf("dando baixa na parcela: %w", err)
	}

	var parcela domain.Installment
	err = s.db.GetContext(ctx, &parcela,
		s.db.Rebind(`SELECT id, venda_id, valor, data_vencimento, status FROM parcelas_crediario WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Installment{}, fmt.Errorf("%w: id %d", ErrInstallmentNotFound, id)
	}
	if err != nil {
		return domain.Installment{}, fmt.Errorf("consultando parcela: %w", err)
	}
	return parcela, nil
}

// MonthlyReceivable sums pending installments due in the given month.
// Months with nothing pending yield zero.
func (s *Service) MonthlyReceivable(ctx context.Context, month, year int) (decimal.Decimal, error) {
	lo := fmt.Sprintf("%04d-%02d-01", year, month)
	nextYear, nextMonth := monthAfter(month, year)
	hi := fmt.Sprintf("%04d-%02d-01", nextYear, nextMonth)

	var valores []decimal.Decimal
	err := s.db.SelectContext(ctx, &valores,
		s.db.Rebind(`SELECT valor FROM parcelas_crediario
			WHERE status = ? AND data_vencimento >= ? AND data_vencimento < ?`),
		domain.ParcelaPendente, lo, hi)
	if err != nil {
		return decimal.Zero, fmt.Errorf("consultando previsao mensal: %w", err)
	}

	total := decimal.Zero
	for _, v := range valores {
		total = total.Add(v)
	}
	return total, nil
}

func monthAfter(month, year int) (nextYear, nextMonth int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// AvailableMonths lists the distinct months holding pending installments,
// ascending, as month-start instants.
func (s *Service) AvailableMonths(ctx context.Context) ([]time.Time, error) {
	var meses []string
	err := s.db.SelectContext(ctx, &meses,
		s.db.Rebind(`SELECT DISTINCT substr(data_vencimento, 1, 7) AS mes
			FROM parcelas_crediario WHERE status = ? ORDER BY mes ASC`),
		domain.ParcelaPendente)
	if err != nil {
		return nil, fmt.Errorf("consultando meses disponiveis: %w", err)
	}

	months := make([]time.Time, 0, len(meses))
	for _, m := range meses {
		t, err := time.Parse("2006-01", m)
		if err != nil {
			return nil, fmt.Errorf("mes invalido %q: %w", m, err)
		}
		months = append(months, t)
	}
	return months, nil
}

// OverdueCustomer is the dashboard row for a customer with late installments.
type OverdueCustomer struct {
	ID        int64            `db:"id" json:"id"`
	Nome      string           `db:"nome" json:"nome"`
	Telefones domain.PhoneList `db:"telefones" json:"telefones"`
}

// OverdueCustomers returns the customers holding at least one pending
// installment due before the start of today, deduplicated by customer.
func (s *Service) OverdueCustomers(ctx context.Context) ([]OverdueCustomer, error) {
	hoje := s.now().Format("2006-01-02")

	clientes := []OverdueCustomer{}
	err := s.db.SelectContext(ctx, &clientes,
		s.db.Rebind(`SELECT DISTINCT c.id, c.nome, c.telefones
			FROM clientes c
			JOIN vendas v ON c.id = v.cliente_id
			JOIN parcelas_crediario p ON v.id = p.venda_id
			WHERE p.status = ? AND p.data_vencimento < ?
			ORDER BY c.nome ASC`),
		domain.ParcelaPendente, hoje)
	if err != nil {
		return nil, fmt.Errorf("consultando clientes atrasados: %w", err)
	}
	return clientes, nil
}
