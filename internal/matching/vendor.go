package matching

import (
	"strings"
	"unicode"

	"github.com/MrJamesThe3rd/receiptmatch/internal/alias"
	"github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

// Company-form suffixes that carry no identity.
var legalForms = map[string]struct{}{
	"as": {}, "asa": {}, "ab": {}, "ltd": {}, "inc": {}, "llc": {},
	"gmbh": {}, "ans": {}, "da": {}, "enk": {}, "sa": {}, "ag": {},
}

// minPrefix is the shortest token that may match as the head of a compound.
const minPrefix = 3

// VendorTokens normalises a merchant name into its distinct identifying
// tokens. Store numbers and legal forms are dropped.
func VendorTokens(name string) []string {
	folded := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return ' '
	}, encoding.Fold(name))

	seen := make(map[string]struct{})

	var tokens []string

	for _, tok := range strings.Fields(folded) {
		if isNumeric(tok) {
			continue
		}

		if _, ok := legalForms[tok]; ok {
			continue
		}

		if _, ok := seen[tok]; ok {
			continue
		}

		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}

	return tokens
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// VendorScorer compares the bank counterparty with the receipt vendor. It is
// a soft signal and always applies.
type VendorScorer struct {
	aliases map[string]string
}

// NewVendorScorer takes learned aliases keyed by alias.Key(counterparty).
func NewVendorScorer(aliases map[string]string) *VendorScorer {
	return &VendorScorer{aliases: aliases}
}

func (s *VendorScorer) Signal() Signal { return SignalVendor }

func (s *VendorScorer) Score(tx *transaction.Transaction, r *receipt.Receipt) (float64, bool) {
	vendor := VendorTokens(r.Vendor)

	if known, ok := s.aliases[alias.Key(tx.Counterparty)]; ok && sameTokens(VendorTokens(known), vendor) {
		return 1, true
	}

	return VendorSimilarity(VendorTokens(tx.Counterparty), vendor), true
}

// VendorSimilarity is a Jaccard overlap where a token also matches another
// it is a prefix of, so "rema" matches "remabutikk". Each token matches at
// most once.
func VendorSimilarity(a, b []string) float64 {
	if sameTokens(a, b) && len(a) > 0 {
		return 1
	}

	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	used := make([]bool, len(b))
	matched := 0

	for _, x := range a {
		for j, y := range b {
			if used[j] || !tokensMatch(x, y) {
				continue
			}

			used[j] = true
			matched++

			break
		}
	}

	return float64(matched) / float64(len(a)+len(b)-matched)
}

func tokensMatch(a, b string) bool {
	if a == b {
		return true
	}

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	return len(short) >= minPrefix && strings.HasPrefix(long, short)
}

func sameTokens(a, b []string) bool {
	return strings.Join(a, " ") == strings.Join(b, " ")
}
