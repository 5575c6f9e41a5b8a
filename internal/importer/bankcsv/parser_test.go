package bankcsv_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/receiptmatch/internal/importer/bankcsv"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_DNB(t *testing.T) {
	csv := `"Dato";"Forklaring";"Rentedato";"Ut fra konto";"Inn på konto"
"04.03.2024";"Varekjøp REMA 1000 MAJORSTUA Dato 02.03";"04.03.2024";"129,90";""
"05.03.2024";"Overføring Kari Nordmann";"05.03.2024";"";"1 500,00"
`

	txs, err := bankcsv.NewDNB().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 3, 4), txs[0].Date)
	assert.Equal(t, "REMA 1000 MAJORSTUA", txs[0].Counterparty)
	assert.Equal(t, "Varekjøp REMA 1000 MAJORSTUA Dato 02.03", txs[0].Description)
	assert.Equal(t, int64(12990), txs[0].Amount)
	assert.Equal(t, "NOK", txs[0].Currency)
	assert.Equal(t, transaction.DirectionOutgoing, txs[0].Direction)

	assert.Equal(t, int64(150000), txs[1].Amount)
	assert.Equal(t, transaction.DirectionIncoming, txs[1].Direction)
}

func TestParser_Nordea(t *testing.T) {
	csv := `Bokføringsdato;Beløp;Avsender;Mottaker;Navn;Tittel;Valuta;Betalingstype
2024/03/04;-129,90;12345678901;;KIWI 512 BOGSTADVEIEN;KIWI 512 BOGSTADVEIEN;NOK;Varekjøp
2024/03/06;-45,00;12345678901;;;Visa 2301 SPOTIFY;EUR;Varekjøp
Reservert;-99,00;;;;RUTER;NOK;
`

	txs, err := bankcsv.NewNordea().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2024, 3, 4), txs[0].Date)
	assert.Equal(t, "KIWI 512 BOGSTADVEIEN", txs[0].Counterparty)
	assert.Equal(t, int64(12990), txs[0].Amount)
	assert.Equal(t, transaction.DirectionOutgoing, txs[0].Direction)

	assert.Equal(t, "EUR", txs[1].Currency)
	assert.Equal(t, "2301 SPOTIFY", txs[1].Counterparty)
}

func TestParser_CGDConta(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, date(2026, 1, 30), txs[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", txs[0].Description)
	assert.Equal(t, int64(58874), txs[0].Amount)
	assert.Equal(t, "EUR", txs[0].Currency)
	assert.Equal(t, transaction.DirectionOutgoing, txs[0].Direction)

	assert.Equal(t, int64(860852), txs[1].Amount)
	assert.Equal(t, transaction.DirectionIncoming, txs[1].Direction)
}

func TestParser_CGDExtrato(t *testing.T) {
	csv := `Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "PAGAMENTO TSU", txs[0].Description)
	assert.Equal(t, "TSU", txs[0].Counterparty)
	assert.Equal(t, int64(60813), txs[0].Amount)
}

func TestParser_CGDCartao(t *testing.T) {
	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR         GONDOMAR ;64,00 ; ;
16-12-2025 ;14-12-2025 ;REFUND AMAZON ;  ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "PA GONDOMAR GONDOMAR", txs[0].Counterparty)
	assert.Equal(t, int64(6400), txs[0].Amount)
	assert.Equal(t, transaction.DirectionOutgoing, txs[0].Direction)

	assert.Equal(t, int64(2500), txs[1].Amount)
	assert.Equal(t, transaction.DirectionIncoming, txs[1].Direction)
}

func TestParser_Latin1Encoding(t *testing.T) {
	utf8CSV := "Data mov.;Descrição;Montante\n30-01-2026;CAFÉ CENTRAL;-10,00\n"

	latin1Bytes, err := charmap.Windows1252.NewEncoder().Bytes([]byte(utf8CSV))
	require.NoError(t, err)

	txs, err := bankcsv.NewCGD().Parse(bytes.NewReader(latin1Bytes))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "CAFÉ CENTRAL", txs[0].Description)
}

func TestParser_DifferentColumnOrder(t *testing.T) {
	csv := `Random;MetaData
Montante;Descrição;Data mov.;Ignored
-10,00;TEST_ORDER;30-01-2026;XXX
`

	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, "TEST_ORDER", txs[0].Description)
	assert.Equal(t, int64(1000), txs[0].Amount)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parser  *bankcsv.Parser
		csv     string
		wantMsg string
	}{
		{name: "Empty file", parser: bankcsv.NewCGD(), csv: "", wantMsg: "no matching CGD format"},
		{name: "Wrong bank", parser: bankcsv.NewDNB(), csv: "Data mov.;Descrição;Montante\n", wantMsg: "no matching DNB format"},
		{name: "Missing description", parser: bankcsv.NewCGD(), csv: "Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n", wantMsg: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParser_HeaderOnly(t *testing.T) {
	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(`Data mov.;Data-valor;Descrição;Montante`))
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestParser_LargeAmountsAndFooters(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;BIG TRANSFER;-1.234.567,89
Totais;;;;
`

	txs, err := bankcsv.NewCGD().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, txs, 1)

	assert.Equal(t, int64(123456789), txs[0].Amount)
}

func TestCounterparty(t *testing.T) {
	tests := map[string]string{
		"Varekjøp REMA 1000 MAJORSTUA Dato 02.03": "REMA 1000 MAJORSTUA",
		"VISA 4321 NARVESEN OSLO S Kurs 1,00":     "4321 NARVESEN OSLO S",
		"Vipps*Ruter":                             "Ruter",
		"UBER   *TRIP   HELP.UBER.COMNL":          "UBER *TRIP HELP.UBER.COMNL",
		"COMPRA 1234 CONTINENTE":                  "1234 CONTINENTE",
	}

	for in, want := range tests {
		assert.Equal(t, want, bankcsv.Counterparty(in), in)
	}
}
