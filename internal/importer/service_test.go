package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/receiptmatch/internal/importer"
)

func TestService_Import(t *testing.T) {
	svc := importer.NewService()

	tests := []struct {
		name    string
		bank    importer.Bank
		csv     string
		want    int
		wantErr string
	}{
		{
			name: "DNB",
			bank: importer.BankDNB,
			csv:  "Dato;Forklaring;Ut fra konto;Inn på konto\n04.03.2024;Varekjøp KIWI;45,00;\n",
			want: 1,
		},
		{
			name: "Nordea",
			bank: importer.BankNordea,
			csv:  "Bokføringsdato;Beløp;Tittel\n2024/03/04;-45,00;KIWI\n",
			want: 1,
		},
		{
			name: "CGD",
			bank: importer.BankCGD,
			csv:  "Data mov.;Descrição;Montante\n30-01-2026;CAFE;-1,50\n",
			want: 1,
		},
		{
			name:    "Unknown bank",
			bank:    importer.Bank("sparebank"),
			wantErr: "unknown bank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := svc.Import(tt.bank, strings.NewReader(tt.csv))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, txs, tt.want)
		})
	}
}
