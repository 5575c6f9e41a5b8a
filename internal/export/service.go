// Package export hands matched transactions and their receipt documents over
// to the accountant.
package export

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type MatchLister interface {
	ListMatches(ctx context.Context, filter ledger.ListFilter) ([]*ledger.MatchRecord, error)
}

type TransactionGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
}

type ReceiptGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*receipt.Receipt, error)
}

// Item is one active match with both sides and the local path of the
// downloaded receipt document, if any.
type Item struct {
	Match       *ledger.MatchRecord
	Transaction *transaction.Transaction
	Receipt     *receipt.Receipt
	FilePath    string
}

// Service handles the export of matches and receipt documents.
type Service struct {
	matches      MatchLister
	transactions TransactionGetter
	receipts     ReceiptGetter
	client       *http.Client
	apiToken     string
}

// NewService creates a new export Service. apiToken, when set, is sent with
// every document download.
func NewService(matches MatchLister, transactions TransactionGetter, receipts ReceiptGetter, apiToken string) *Service {
	return &Service{
		matches:      matches,
		transactions: transactions,
		receipts:     receipts,
		client:       &http.Client{Timeout: 30 * time.Second},
		apiToken:     apiToken,
	}
}

// Collect returns the active matches whose transaction falls within r,
// ordered by transaction date.
func (s *Service) Collect(ctx context.Context, r period.Range) ([]Item, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	matches, err := s.matches.ListMatches(ctx, ledger.ListFilter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	items := make([]Item, 0, len(matches))

	for _, m := range matches {
		tx, err := s.transactions.Get(ctx, m.TransactionID)
		if err != nil {
			return nil, fmt.Errorf("loading transaction %s: %w", m.TransactionID, err)
		}

		if !r.Contains(tx.Date) {
			continue
		}

		rc, err := s.receipts.Get(ctx, m.ReceiptID)
		if err != nil {
			return nil, fmt.Errorf("loading receipt %s: %w", m.ReceiptID, err)
		}

		items = append(items, Item{Match: m, Transaction: tx, Receipt: rc})
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return cmp.Or(a.Transaction.Date.Compare(b.Transaction.Date), cmp.Compare(a.Transaction.Counterparty, b.Transaction.Counterparty))
	})

	return items, nil
}

// Export collects the matches within r and downloads each receipt document
// into outputDir.
func (s *Service) Export(ctx context.Context, r period.Range, outputDir string) ([]Item, error) {
	items, err := s.Collect(ctx, r)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	for i := range items {
		rc := items[i].Receipt
		if rc.DocumentURL == "" {
			continue
		}

		path, err := s.downloadDocument(ctx, items[i], outputDir)
		if err != nil {
			return nil, fmt.Errorf("downloading document for receipt %s: %w", rc.ID, err)
		}

		items[i].FilePath = path
	}

	return items, nil
}

func (s *Service) downloadDocument(ctx context.Context, item Item, dir string) (string, error) {
	url := item.Receipt.DocumentURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	if s.apiToken != "" {
		req.Header.Set("Authorization", "Token "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, url)
	}

	path := filepath.Join(dir, determineFilename(resp, item))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

func determineFilename(resp *http.Response, item Item) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				// Prefixed with the match so two vendors sending "receipt.pdf" don't collide.
				return item.Match.ID.String()[:8] + "_" + strings.ReplaceAll(filepath.Base(filename), " ", "_")
			}
		}
	}

	ext := ".pdf"

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	safeVendor := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, item.Receipt.Vendor)

	// Format: YYYYMMDD_Vendor_matchid.ext
	return fmt.Sprintf("%s_%s_%s%s", item.Transaction.Date.Format("20060102"), safeVendor, item.Match.ID.String()[:8], ext)
}

type csvRow struct {
	Date         string  `csv:"date"`
	Counterparty string  `csv:"counterparty"`
	Vendor       string  `csv:"vendor"`
	Amount       string  `csv:"amount"`
	Currency     string  `csv:"currency"`
	Direction    string  `csv:"direction"`
	Category     string  `csv:"category"`
	Tier         string  `csv:"tier"`
	Score        float64 `csv:"score"`
	MatchID      string  `csv:"match_id"`
	Document     string  `csv:"document"`
}

// WriteCSV writes one row per item.
func WriteCSV(w io.Writer, items []Item) error {
	rows := make([]*csvRow, 0, len(items))

	for _, item := range items {
		tx := item.Transaction

		row := &csvRow{
			Date:         tx.Date.Format(time.DateOnly),
			Counterparty: tx.Counterparty,
			Vendor:       item.Receipt.Vendor,
			Amount:       money.Format(tx.Amount),
			Currency:     tx.Currency,
			Direction:    string(tx.Direction),
			Tier:         string(item.Match.Tier),
			Score:        item.Match.Score,
			MatchID:      item.Match.ID.String(),
		}

		if item.Receipt.Category != nil {
			row.Category = *item.Receipt.Category
		}

		if item.FilePath != "" {
			row.Document = filepath.Base(item.FilePath)
		}

		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

// Summary renders a plain-text digest of the items, one line each, followed
// by totals per currency.
func Summary(items []Item) string {
	var sb strings.Builder

	totals := make(map[string]int64)

	for _, item := range items {
		tx := item.Transaction

		sign := "-"
		if tx.Direction == transaction.DirectionIncoming {
			sign = "+"
			totals[tx.Currency] += tx.Amount
		} else {
			totals[tx.Currency] -= tx.Amount
		}

		fileStatus := "no document"
		if item.FilePath != "" {
			fileStatus = filepath.Base(item.FilePath)
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s %s | %s\n",
			tx.Date.Format(time.DateOnly), item.Receipt.Vendor, sign, money.Format(tx.Amount), tx.Currency, fileStatus)
	}

	currencies := make([]string, 0, len(totals))
	for c := range totals {
		currencies = append(currencies, c)
	}

	slices.Sort(currencies)

	for _, c := range currencies {
		fmt.Fprintf(&sb, "Net %s: %s\n", c, money.Format(totals[c]))
	}

	return sb.String()
}

// WriteIndex writes matches.csv and summary.txt next to the downloaded documents.
func WriteIndex(dir string, items []Item) error {
	f, err := os.Create(filepath.Join(dir, "matches.csv"))
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, items); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "summary.txt"), []byte(Summary(items)), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	return nil
}
