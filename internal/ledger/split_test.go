package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitEqually(t *testing.T) {
	tests := []struct {
		name         string
		amount       string
		payerID      int
		participants []int
		wantErr      error
		validateFunc func(t *testing.T, splits []Split)
	}{
		{
			name:         "even two-way split",
			amount:       "100.00",
			payerID:      1,
			participants: []int{1, 2},
			validateFunc: func(t *testing.T, splits []Split) {
				for _, s := range splits {
					if !s.Amount.Equal(decimal.RequireFromString("50.00")) {
						t.Errorf("split amount = %s, want 50.00", s.Amount)
					}
					if s.CreditorID != 1 {
						t.Errorf("creditor = %d, want 1", s.CreditorID)
					}
					if s.Settled {
						t.Error("new split must be unsettled")
					}
				}
			},
		},
		{
			name:         "remainder cents go to the first participants",
			amount:       "100.00",
			payerID:      1,
			participants: []int{2, 3, 4},
			validateFunc: func(t *testing.T, splits []Split) {
				want := []string{"33.34", "33.33", "33.33"}
				for i, s := range splits {
					if !s.Amount.Equal(decimal.RequireFromString(want[i])) {
						t.Errorf("split[%d] = %s, want %s", i, s.Amount, want[i])
					}
				}
			},
		},
		{
			name:         "split sum always equals the amount",
			amount:       "0.07",
			payerID:      9,
			participants: []int{1, 2, 3, 4, 5},
			validateFunc: func(t *testing.T, splits []Split) {
				sum := decimal.Zero
				for _, s := range splits {
					sum = sum.Add(s.Amount)
				}
				if !sum.Equal(decimal.RequireFromString("0.07")) {
					t.Errorf("sum = %s, want 0.07", sum)
				}
			},
		},
		{
			name:         "payer may split with themselves only",
			amount:       "12.50",
			payerID:      7,
			participants: []int{7},
			validateFunc: func(t *testing.T, splits []Split) {
				if len(splits) != 1 {
					t.Fatalf("got %d splits, want 1", len(splits))
				}
				if splits[0].DebtorID != 7 || splits[0].CreditorID != 7 {
					t.Errorf("self-split = %d→%d, want 7→7", splits[0].DebtorID, splits[0].CreditorID)
				}
			},
		},
		{
			name:         "debtors follow participant order",
			amount:       "30.00",
			payerID:      1,
			participants: []int{3, 1, 2},
			validateFunc: func(t *testing.T, splits []Split) {
				want := []int{3, 1, 2}
				for i, s := range splits {
					if s.DebtorID != want[i] {
						t.Errorf("split[%d] debtor = %d, want %d", i, s.DebtorID, want[i])
					}
				}
			},
		},
		{
			name:         "zero amount rejected",
			amount:       "0",
			payerID:      1,
			participants: []int{1, 2},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "negative amount rejected",
			amount:       "-5.00",
			payerID:      1,
			participants: []int{1, 2},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "sub-cent amount rejected",
			amount:       "10.005",
			payerID:      1,
			participants: []int{1, 2},
			wantErr:      ErrSubCentAmount,
		},
		{
			name:         "empty participants rejected",
			amount:       "10.00",
			payerID:      1,
			participants: []int{},
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "duplicate participant rejected",
			amount:       "10.00",
			payerID:      1,
			participants: []int{2, 3, 2},
			wantErr:      ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := SplitEqually(decimal.RequireFromString(tt.amount), tt.payerID, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(splits) != len(tt.participants) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.participants))
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func TestSplitSumProperty(t *testing.T) {
	// The sum of generated splits must equal the original amount exactly,
	// whatever the amount/participant combination.
	amounts := []string{"100.00", "99.99", "0.01", "1.00", "33.33", "250.10"}
	for _, a := range amounts {
		amount := decimal.RequireFromString(a)
		for n := 1; n <= 9; n++ {
			participants := make([]int, n)
			for i := range participants {
				participants[i] = i + 1
			}
			splits, err := SplitEqually(amount, 1, participants)
			if err != nil {
				t.Fatalf("SplitEqually(%s, %d): %v", a, n, err)
			}
			sum := decimal.Zero
			for _, s := range splits {
				sum = sum.Add(s.Amount)
			}
			if !sum.Equal(amount) {
				t.Errorf("amount %s over %d participants: splits sum to %s", a, n, sum)
			}
		}
	}
}
