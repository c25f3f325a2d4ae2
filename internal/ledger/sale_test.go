package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestGroupCart(t *testing.T) {
	tests := []struct {
		name     string
		produtos []int64
		want     []cartGroup
	}{
		{
			name:     "duplicates collapse into quantity",
			produtos: []int64{7, 7, 9},
			want:     []cartGroup{{ProdutoID: 7, Quantidade: 2}, {ProdutoID: 9, Quantidade: 1}},
		},
		{
			name:     "order follows first appearance",
			produtos: []int64{3, 1, 3, 2, 1, 3},
			want:     []cartGroup{{3, 3}, {1, 2}, {2, 1}},
		},
		{
			name:     "single item",
			produtos: []int64{5},
			want:     []cartGroup{{5, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := groupCart(tt.produtos)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d groups, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("group %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitInstallments(t *testing.T) {
	tests := []struct {
		name  string
		total string
		n     int64
		want  []string
	}{
		{"even split", "25.00", 2, []string{"12.5", "12.5"}},
		{"remainder goes to last", "10.00", 3, []string{"3.33", "3.33", "3.34"}},
		{"single installment", "99.90", 1, []string{"99.9"}},
		{"seven way", "100.00", 7, []string{"14.28", "14.28", "14.28", "14.28", "14.28", "14.28", "14.32"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := decimal.RequireFromString(tt.total)
			got := splitInstallments(total, tt.n)
			if int64(len(got)) != tt.n {
				t.Fatalf("got %d installments, want %d", len(got), tt.n)
			}
			sum := decimal.Zero
			for i, v := range got {
				want := decimal.RequireFromString(tt.want[i])
				if !v.Equal(want) {
					t.Errorf("installment %d = %s, want %s", i, v, want)
				}
				sum = sum.Add(v)
			}
			if !sum.Equal(total) {
				t.Errorf("installments sum to %s, want %s", sum, total)
			}
		})
	}
}

func TestResolveSaleTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 17, 6, 53, 0, time.UTC)

	t.Run("empty date keeps now", func(t *testing.T) {
		got, err := resolveSaleTime("", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(now) {
			t.Errorf("got %v, want %v", got, now)
		}
	})

	t.Run("chosen date keeps wall clock", func(t *testing.T) {
		got, err := resolveSaleTime("2025-09-04", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 9, 4, 17, 6, 53, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("malformed date rejected", func(t *testing.T) {
		_, err := resolveSaleTime("04/09/2025", now)
		if !errors.Is(err, ErrInvalidSaleDate) {
			t.Errorf("got %v, want ErrInvalidSaleDate", err)
		}
	})
}

func TestDueDatesAdvanceByCalendarMonth(t *testing.T) {
	base := time.Date(2025, 11, 20, 10, 30, 0, 0, time.UTC)
	prev := base
	for i := 1; i <= 6; i++ {
		due := base.AddDate(0, i, 0)
		if !due.After(prev) {
			t.Fatalf("due date %d (%v) not after previous (%v)", i, due, prev)
		}
		prev = due
	}
	// Crossing a year boundary
	if got := base.AddDate(0, 2, 0); got.Year() != 2026 || got.Month() != time.January {
		t.Errorf("base+2 months = %v, want January 2026", got)
	}
}
