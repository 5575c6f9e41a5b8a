package bankcsv

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Beløp" with value "-129,90").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns (e.g. "Ut fra konto"/"Inn på konto").
	amountSplit
)

// Profile describes the column layout of one bank CSV export format.
// Adding a new format is just adding a Profile to the bank's list.
type Profile struct {
	Name       string
	Currency   string
	DateLayout string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // used when AmountMode == amountSingle
	DebitCol   string // used when AmountMode == amountSplit
	CreditCol  string // used when AmountMode == amountSplit
	// Optional columns, read when present.
	CounterpartyCol string
	CurrencyCol     string
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

var dnbProfiles = []Profile{
	{
		Name:       "dnb konto",
		Currency:   "NOK",
		DateLayout: "02.01.2006",
		DateCol:    "Dato",
		DescCol:    "Forklaring",
		AmountMode: amountSplit,
		DebitCol:   "Ut fra konto",
		CreditCol:  "Inn på konto",
	},
}

var nordeaProfiles = []Profile{
	{
		Name:            "nordea konto",
		Currency:        "NOK",
		DateLayout:      "2006/01/02",
		DateCol:         "Bokføringsdato",
		DescCol:         "Tittel",
		AmountMode:      amountSingle,
		AmountCol:       "Beløp",
		CounterpartyCol: "Navn",
		CurrencyCol:     "Valuta",
	},
}

// cgdProfiles are ordered most specific first to avoid false matches.
var cgdProfiles = []Profile{
	{
		Name:       "cgd cartão",
		Currency:   "EUR",
		DateLayout: "02-01-2006",
		DateCol:    "Data",
		DescCol:    "Descrição",
		AmountMode: amountSplit,
		DebitCol:   "Débito",
		CreditCol:  "Crédito",
	},
	{
		Name:       "cgd extrato",
		Currency:   "EUR",
		DateLayout: "02-01-2006",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Movimento",
	},
	{
		Name:       "cgd conta",
		Currency:   "EUR",
		DateLayout: "02-01-2006",
		DateCol:    "Data mov.",
		DescCol:    "Descrição",
		AmountMode: amountSingle,
		AmountCol:  "Montante",
	},
}
