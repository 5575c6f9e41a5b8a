package matching

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

//go:embed categories.yaml
var defaultCategories []byte

// CategoryMap maps a folded category name to its canonical group.
type CategoryMap map[string]string

type categoryFile struct {
	Groups map[string][]string `yaml:"groups"`
}

// LoadCategoryMap reads a YAML document of the form
//
//	groups:
//	  travel: [Travel, Reise, Drivstoff]
func LoadCategoryMap(r io.Reader) (CategoryMap, error) {
	var f categoryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding category map: %w", err)
	}

	m := make(CategoryMap)

	for group, names := range f.Groups {
		g := foldCategory(group)
		m[g] = g

		for _, name := range names {
			m[foldCategory(name)] = g
		}
	}

	return m, nil
}

// LoadCategoryMapFile reads a category map from path.
func LoadCategoryMapFile(path string) (CategoryMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening category map: %w", err)
	}
	defer f.Close()

	return LoadCategoryMap(f)
}

// DefaultCategoryMap returns the built-in accounting groups.
func DefaultCategoryMap() CategoryMap {
	m, err := LoadCategoryMap(bytes.NewReader(defaultCategories))
	if err != nil {
		panic(err)
	}

	return m
}

// Group returns the canonical group of name. Unknown names are their own group.
func (m CategoryMap) Group(name string) string {
	key := foldCategory(name)
	if g, ok := m[key]; ok {
		return g
	}

	return key
}

func foldCategory(name string) string {
	return strings.Join(strings.Fields(encoding.Fold(name)), " ")
}

// CategoryScorer compares categories through their groups. It only applies
// when both sides carry a category.
type CategoryScorer struct {
	groups CategoryMap
}

func NewCategoryScorer(groups CategoryMap) *CategoryScorer {
	return &CategoryScorer{groups: groups}
}

func (s *CategoryScorer) Signal() Signal { return SignalCategory }

func (s *CategoryScorer) Score(tx *transaction.Transaction, r *receipt.Receipt) (float64, bool) {
	if tx.Category == nil || r.Category == nil {
		return 0, false
	}

	a, b := strings.TrimSpace(*tx.Category), strings.TrimSpace(*r.Category)
	if a == "" || b == "" {
		return 0, false
	}

	if s.groups.Group(a) == s.groups.Group(b) {
		return 1, true
	}

	return 0, true
}
