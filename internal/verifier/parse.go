package verifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
)

type reply struct {
	MatchedReceiptID *string   `json:"matched_receipt_id"`
	Confidence       flexFloat `json:"confidence"`
	Reasoning        string    `json:"reasoning"`
	MatchType        string    `json:"match_type"`
}

// flexFloat accepts both 0.9 and "0.9"; models quote numbers freely.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parsing confidence %q: %w", data, err)
	}

	*f = flexFloat(v)

	return nil
}

// parseVerdict extracts the JSON object from a model reply. A pick outside
// candidates, or an unparseable id, is treated as no pick.
func parseVerdict(text string, candidates []*receipt.Receipt) (escalation.Verdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return escalation.Verdict{}, fmt.Errorf("no JSON object found in response")
	}

	end := strings.LastIndex(text, "}")
	if end < start {
		return escalation.Verdict{}, fmt.Errorf("invalid JSON object in response")
	}

	var r reply
	if err := json.Unmarshal([]byte(text[start:end+1]), &r); err != nil {
		return escalation.Verdict{}, fmt.Errorf("unmarshaling json: %w", err)
	}

	v := escalation.Verdict{
		Confidence: min(max(float64(r.Confidence), 0), 1),
		Reasoning:  strings.TrimSpace(r.Reasoning),
	}

	if r.MatchedReceiptID == nil || strings.EqualFold(r.MatchType, "none") {
		return v, nil
	}

	id, err := uuid.Parse(strings.TrimSpace(*r.MatchedReceiptID))
	if err != nil {
		return v, nil
	}

	for _, c := range candidates {
		if c.ID == id {
			v.ReceiptID = &id
			break
		}
	}

	return v, nil
}
