// Package bankcsv reads semicolon-separated bank exports into transaction
// params, detecting the export format from its header row.
package bankcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Parser reads one bank's CSV exports. It picks the first of the bank's
// profiles whose columns all appear in a header row.
type Parser struct {
	bank     string
	profiles []Profile
}

func NewDNB() *Parser    { return &Parser{bank: "DNB", profiles: dnbProfiles} }
func NewNordea() *Parser { return &Parser{bank: "Nordea", profiles: nordeaProfiles} }
func NewCGD() *Parser    { return &Parser{bank: "CGD", profiles: cgdProfiles} }

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, colMap, headerIdx := detectProfile(p.profiles, rows)
	if profile == nil {
		return nil, fmt.Errorf("no matching %s format found: expected columns %s",
			p.bank, strings.Join(p.profiles[0].requiredCols(), ", "))
	}

	return parseRows(profile, colMap, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(row []string, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := c[name]
	if !ok {
		return ""
	}

	return cellValue(row, idx)
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map, and header row index.
func detectProfile(profiles []Profile, rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	var txs []transaction.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(cols.get(row, p.DateCol), p.DateLayout)
		if !ok {
			continue
		}

		desc := cols.get(row, p.DescCol)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, dir, ok := parseAmount(p, cols, row)
		if !ok {
			continue
		}

		currency := p.Currency
		if c := cols.get(row, p.CurrencyCol); len(c) == 3 {
			currency = strings.ToUpper(c)
		}

		name := cols.get(row, p.CounterpartyCol)
		if name == "" {
			name = Counterparty(desc)
		}

		txs = append(txs, transaction.CreateParams{
			Amount:       amount,
			Currency:     currency,
			Date:         date,
			Counterparty: name,
			Description:  desc,
			Direction:    dir,
		})
	}

	return txs, nil
}

// parseDate returns false for empty cells or unparseable values (footer rows, etc).
func parseDate(s, layout string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func parseAmount(p *Profile, cols colIndex, row []string) (int64, transaction.Direction, bool) {
	switch p.AmountMode {
	case amountSingle:
		return parseSingleAmount(cols.get(row, p.AmountCol))
	case amountSplit:
		return parseSplitAmount(cols.get(row, p.DebitCol), cols.get(row, p.CreditCol))
	}

	return 0, "", false
}

// parseSingleAmount handles a single signed amount column.
func parseSingleAmount(s string) (int64, transaction.Direction, bool) {
	if s == "" {
		return 0, "", false
	}

	cents, err := money.Parse(s)
	if err != nil || cents == 0 {
		return 0, "", false
	}

	if cents < 0 {
		return -cents, transaction.DirectionOutgoing, true
	}

	return cents, transaction.DirectionIncoming, true
}

// parseSplitAmount handles separate debit/credit columns.
func parseSplitAmount(debit, credit string) (int64, transaction.Direction, bool) {
	if debit != "" {
		cents, err := money.Parse(debit)
		if err == nil && cents != 0 {
			return money.Abs(cents), transaction.DirectionOutgoing, true
		}
	}

	if credit != "" {
		cents, err := money.Parse(credit)
		if err == nil && cents != 0 {
			return money.Abs(cents), transaction.DirectionIncoming, true
		}
	}

	return 0, "", false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

var (
	purchasePrefix = regexp.MustCompile(`(?i)^(?:(?:varekjøp|kortkjøp|visa|compra|pagamento|pag\.)\s+|vipps\s*\*\s*)`)
	cardDate       = regexp.MustCompile(`(?i)\s+(dato|kurs)\s+[\d.,:/ ]+.*$`)
	spaces         = regexp.MustCompile(`\s+`)
)

// Counterparty strips card-purchase boilerplate from a bank description,
// leaving the merchant text.
func Counterparty(desc string) string {
	s := spaces.ReplaceAllString(strings.TrimSpace(desc), " ")
	s = cardDate.ReplaceAllString(s, "")
	s = purchasePrefix.ReplaceAllString(s, "")

	return strings.TrimSpace(s)
}
