package matching_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receiptmatch/internal/alias"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var march10 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func newTx(amount int64, date time.Time, counterparty string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:           uuid.New(),
		Amount:       amount,
		Currency:     "NOK",
		Date:         date,
		Counterparty: counterparty,
		Direction:    transaction.DirectionOutgoing,
		Status:       transaction.StatusUnmatched,
	}
}

func newReceipt(amount int64, date time.Time, vendor string) *receipt.Receipt {
	return &receipt.Receipt{
		ID:        uuid.New(),
		Amount:    amount,
		Currency:  "NOK",
		Date:      date,
		Vendor:    vendor,
		Direction: transaction.DirectionOutgoing,
		Status:    receipt.StatusUnmatched,
	}
}

func TestAmountScorer(t *testing.T) {
	tests := []struct {
		name      string
		tx        int64
		receipt   int64
		want      float64
		wantApply bool
	}{
		{name: "Equal", tx: 50000, receipt: 50000, want: 1, wantApply: true},
		{name: "Small difference", tx: 49900, receipt: 50000, want: 0.95, wantApply: true},
		{name: "At tolerance", tx: 102000, receipt: 100000, want: 0.5, wantApply: true},
		{name: "Five percent", tx: 100000, receipt: 105000, wantApply: false},
	}

	s := matching.NewAmountScorer(0.02)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Score(newTx(tt.tx, march10, ""), newReceipt(tt.receipt, march10, ""))
			assert.Equal(t, tt.wantApply, ok)

			if tt.wantApply {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestDateScorer(t *testing.T) {
	tests := []struct {
		name      string
		window    int
		days      int
		want      float64
		wantApply bool
	}{
		{name: "Same day", window: 14, days: 0, want: 1, wantApply: true},
		{name: "Halfway", window: 14, days: -7, want: 0.5, wantApply: true},
		{name: "Edge of window", window: 14, days: 14, want: 0, wantApply: true},
		{name: "Outside window", window: 14, days: 15},
		{name: "Zero window same day", window: 0, days: 0, want: 1, wantApply: true},
		{name: "Zero window next day", window: 0, days: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := matching.NewDateScorer(tt.window)

			got, ok := s.Score(newTx(100, march10, ""), newReceipt(100, march10.AddDate(0, 0, tt.days), ""))
			assert.Equal(t, tt.wantApply, ok)

			if tt.wantApply {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestVendorTokens(t *testing.T) {
	assert.Equal(t, []string{"rema"}, matching.VendorTokens("Rema 1000"))
	assert.Equal(t, []string{"kiwi", "majorstuen"}, matching.VendorTokens("KIWI 505 Majorstuen AS"))
	assert.Equal(t, []string{"boker", "co"}, matching.VendorTokens("Bøker & Co. AS"))
	assert.Empty(t, matching.VendorTokens("1000 AS"))
}

func TestVendorScorer(t *testing.T) {
	tests := []struct {
		name         string
		counterparty string
		vendor       string
		aliases      map[string]string
		want         float64
	}{
		{name: "Compound prefix", counterparty: "RemaButikk", vendor: "Rema 1000", want: 1},
		{name: "Equal after normalising", counterparty: "KIWI 505 MAJORSTUEN", vendor: "Kiwi Majorstuen AS", want: 1},
		{name: "Partial overlap", counterparty: "Circle K Oslo", vendor: "Circle K Truck", want: 0.5},
		{name: "No overlap", counterparty: "Coop Extra", vendor: "Rema 1000", want: 0},
		{name: "Empty counterparty", counterparty: "", vendor: "Rema 1000", want: 0},
		{name: "Short tokens need equality", counterparty: "Bi Sentrum", vendor: "Bilia", want: 0},
		{
			name:         "Learned alias",
			counterparty: "NETS*ZETTLE 4432",
			vendor:       "Kaffebrenneriet AS",
			aliases:      map[string]string{alias.Key("NETS*ZETTLE 4432"): "Kaffebrenneriet"},
			want:         1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := matching.NewVendorScorer(tt.aliases)

			got, ok := s.Score(newTx(100, march10, tt.counterparty), newReceipt(100, march10, tt.vendor))
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCategoryScorer(t *testing.T) {
	tests := []struct {
		name      string
		tx        *string
		receipt   *string
		want      float64
		wantApply bool
	}{
		{name: "Same group", tx: new("Drivstoff"), receipt: new("Travel & Transportation"), want: 1, wantApply: true},
		{name: "Different groups", tx: new("Husleie"), receipt: new("Software"), want: 0, wantApply: true},
		{name: "Unmapped equal names", tx: new("Hundemat"), receipt: new(" hundemat "), want: 1, wantApply: true},
		{name: "Missing on transaction", receipt: new("Rent")},
		{name: "Blank on receipt", tx: new("Rent"), receipt: new("  ")},
	}

	s := matching.NewCategoryScorer(matching.DefaultCategoryMap())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newTx(100, march10, "")
			tx.Category = tt.tx

			r := newReceipt(100, march10, "")
			r.Category = tt.receipt

			got, ok := s.Score(tx, r)
			assert.Equal(t, tt.wantApply, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestLoadCategoryMap(t *testing.T) {
	m, err := matching.LoadCategoryMap(strings.NewReader(`
groups:
  vehicle: [Bil, Drivstoff, Bompenger]
`))
	require.NoError(t, err)

	assert.Equal(t, "vehicle", m.Group("bompenger"))
	assert.Equal(t, "vehicle", m.Group("Vehicle"))
	assert.Equal(t, "unknown thing", m.Group("Unknown  Thing"))

	_, err = matching.LoadCategoryMap(strings.NewReader("groups: [oops"))
	assert.Error(t, err)
}
