package poster

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
)

const defaultFikenURL = "https://api.fiken.no/api/v2"

//go:embed accounts.yaml
var defaultAccounts []byte

// AccountMap picks the expense account for a receipt category group.
type AccountMap struct {
	Default  string            `yaml:"default"`
	Accounts map[string]string `yaml:"accounts"`
}

func LoadAccountMap(r io.Reader) (*AccountMap, error) {
	var m AccountMap
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding account map: %w", err)
	}

	if m.Default == "" {
		return nil, fmt.Errorf("account map has no default account")
	}

	return &m, nil
}

func LoadAccountMapFile(path string) (*AccountMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening account map: %w", err)
	}
	defer f.Close()

	return LoadAccountMap(f)
}

func DefaultAccountMap() *AccountMap {
	m, err := LoadAccountMap(bytes.NewReader(defaultAccounts))
	if err != nil {
		panic(err)
	}

	return m
}

func (m *AccountMap) Account(group string) string {
	if a, ok := m.Accounts[group]; ok {
		return a
	}

	return m.Default
}

type FikenConfig struct {
	BaseURL     string
	Token       string
	CompanySlug string
	Accounts    *AccountMap
	Categories  matching.CategoryMap
	HTTPClient  *http.Client
}

// Fiken registers each automatic match as a paid cash purchase.
type Fiken struct {
	baseURL    string
	token      string
	company    string
	accounts   *AccountMap
	categories matching.CategoryMap
	client     *http.Client
}

func NewFiken(cfg FikenConfig) (*Fiken, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("fiken token is required")
	}

	if cfg.CompanySlug == "" {
		return nil, fmt.Errorf("fiken company slug is required")
	}

	f := &Fiken{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		company:    cfg.CompanySlug,
		accounts:   cfg.Accounts,
		categories: cfg.Categories,
		client:     cfg.HTTPClient,
	}

	if f.baseURL == "" {
		f.baseURL = defaultFikenURL
	}

	if f.accounts == nil {
		f.accounts = DefaultAccountMap()
	}

	if f.categories == nil {
		f.categories = matching.DefaultCategoryMap()
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}

	return f, nil
}

type purchaseRequest struct {
	Date     string         `json:"date"`
	Kind     string         `json:"kind"`
	Paid     bool           `json:"paid"`
	Currency string         `json:"currency"`
	Supplier supplier       `json:"supplier"`
	Lines    []purchaseLine `json:"lines"`
}

type supplier struct {
	Name string `json:"name"`
}

type purchaseLine struct {
	Description string `json:"description"`
	GrossAmount int64  `json:"grossAmount"`
	Account     string `json:"account"`
	VatType     string `json:"vatType"`
}

func (f *Fiken) purchase(p Posting) purchaseRequest {
	group := "other"
	if p.Receipt.Category != nil {
		group = f.categories.Group(*p.Receipt.Category)
	}

	return purchaseRequest{
		Date:     p.Receipt.Date.Format("2006-01-02"),
		Kind:     "cash_purchase",
		Paid:     true,
		Currency: p.Receipt.Currency,
		Supplier: supplier{Name: p.Receipt.Vendor},
		Lines: []purchaseLine{{
			Description: fmt.Sprintf("Purchase from %s", p.Receipt.Vendor),
			GrossAmount: p.Receipt.Amount,
			Account:     f.accounts.Account(group),
			VatType:     "NONE",
		}},
	}
}

func (f *Fiken) OnAutoMatch(ctx context.Context, p Posting) error {
	body, err := json.Marshal(f.purchase(p))
	if err != nil {
		return fmt.Errorf("marshaling purchase: %w", err)
	}

	url := fmt.Sprintf("%s/companies/%s/purchases", f.baseURL, f.company)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling fiken API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fiken API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
