// Package receiptcsv reads the CSV export of a receipt extraction tool.
//
// The header row names the columns; order does not matter and unknown
// columns are ignored:
//
//	external_id,date,amount,currency,vendor,category,direction,document_url
package receiptcsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	enc "github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

type row struct {
	ExternalID  string `csv:"external_id"`
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Vendor      string `csv:"vendor"`
	Category    string `csv:"category"`
	Direction   string `csv:"direction"`
	DocumentURL string `csv:"document_url"`
}

// InvalidRow is a data row that could not be converted. Line is 1-based and
// counts the header.
type InvalidRow struct {
	Line int
	Err  error
}

type Result struct {
	Receipts []receipt.CreateParams
	Invalid  []InvalidRow
}

var dateLayouts = []string{time.DateOnly, "02.01.2006", "02/01/2006", "2006/01/02", time.RFC3339}

// Parse reads comma or semicolon separated receipts. The separator is taken
// from the header line.
func Parse(r io.Reader) (*Result, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	header, err := br.Peek(sniffLen(br))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("read header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = separator(string(header))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []*row
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return &Result{}, nil
		}

		return nil, fmt.Errorf("read csv: %w", err)
	}

	result := &Result{Receipts: make([]receipt.CreateParams, 0, len(rows))}

	for i, rw := range rows {
		p, err := rw.params()
		if err != nil {
			result.Invalid = append(result.Invalid, InvalidRow{Line: i + 2, Err: err})
			continue
		}

		result.Receipts = append(result.Receipts, p)
	}

	return result, nil
}

func sniffLen(br *bufio.Reader) int {
	return min(br.Size(), 1024)
}

func separator(header string) rune {
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}

	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}

	return ','
}

func (r *row) params() (receipt.CreateParams, error) {
	date, err := parseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return receipt.CreateParams{}, err
	}

	amount, err := money.Parse(r.Amount)
	if err != nil {
		return receipt.CreateParams{}, err
	}

	dir, err := parseDirection(r.Direction, amount)
	if err != nil {
		return receipt.CreateParams{}, err
	}

	p := receipt.CreateParams{
		ExternalID:  strings.TrimSpace(r.ExternalID),
		Amount:      money.Abs(amount),
		Currency:    strings.ToUpper(strings.TrimSpace(r.Currency)),
		Date:        date,
		Vendor:      strings.TrimSpace(r.Vendor),
		Direction:   dir,
		DocumentURL: strings.TrimSpace(r.DocumentURL),
	}

	if c := strings.TrimSpace(r.Category); c != "" {
		p.Category = &c
	}

	return p, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseDirection falls back to the amount sign when the column is empty: a
// negative amount is a refund or sale coming in.
func parseDirection(s string, amount int64) (transaction.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		if amount < 0 {
			return transaction.DirectionIncoming, nil
		}

		return transaction.DirectionOutgoing, nil
	case "outgoing", "out", "expense":
		return transaction.DirectionOutgoing, nil
	case "incoming", "in", "income":
		return transaction.DirectionIncoming, nil
	}

	return "", fmt.Errorf("unknown direction %q", s)
}
