package verifier

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

const verdictBucket = "verdicts"

// Cache remembers verdicts per transaction and candidate set so repeated
// sync runs over the same period do not ask the model again. Failed calls
// are never cached.
type Cache struct {
	next   escalation.Verifier
	db     *bbolt.DB
	logger *slog.Logger
}

type cachedVerdict struct {
	ReceiptID  *uuid.UUID `json:"receipt_id"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
	StoredAt   time.Time  `json:"stored_at"`
}

func NewCache(path string, next escalation.Verifier, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening verdict cache: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(verdictBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Cache{next: next, db: db, logger: logger}, nil
}

func (c *Cache) Name() string {
	if n, ok := c.next.(escalation.Named); ok {
		return n.Name()
	}

	return "verifier"
}

func (c *Cache) Verify(ctx context.Context, tx *transaction.Transaction, candidates []*receipt.Receipt) (escalation.Verdict, error) {
	key := cacheKey(c.Name(), tx, candidates)

	if v, ok := c.get(key); ok {
		c.logger.Debug("verdict cache hit", "transaction_id", tx.ID)
		return v, nil
	}

	v, err := c.next.Verify(ctx, tx, candidates)
	if err != nil {
		return v, err
	}

	if err := c.put(key, v); err != nil {
		c.logger.Warn("failed to cache verdict", "transaction_id", tx.ID, "error", err)
	}

	return v, nil
}

func (c *Cache) get(key []byte) (escalation.Verdict, bool) {
	var cv *cachedVerdict

	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(verdictBucket)).Get(key)
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &cv)
	})
	if err != nil || cv == nil {
		return escalation.Verdict{}, false
	}

	return escalation.Verdict{ReceiptID: cv.ReceiptID, Confidence: cv.Confidence, Reasoning: cv.Reasoning}, true
}

func (c *Cache) put(key []byte, v escalation.Verdict) error {
	data, err := json.Marshal(cachedVerdict{
		ReceiptID:  v.ReceiptID,
		Confidence: v.Confidence,
		Reasoning:  v.Reasoning,
		StoredAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshaling verdict: %w", err)
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(verdictBucket)).Put(key, data)
	})
}

// Close closes the cache and, when it has one, the wrapped verifier.
func (c *Cache) Close() error {
	if closer, ok := c.next.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.db.Close()
			return err
		}
	}

	return c.db.Close()
}

func cacheKey(provider string, tx *transaction.Transaction, candidates []*receipt.Receipt) []byte {
	ids := make([]string, 0, len(candidates))
	for _, r := range candidates {
		ids = append(ids, r.ID.String())
	}

	slices.Sort(ids)

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%s\x00%s\x00%s\x00%s\x00%s",
		provider,
		tx.ID,
		tx.Amount,
		tx.Currency,
		tx.Date.Format("2006-01-02"),
		tx.Counterparty,
		tx.Description,
		strings.Join(ids, ","),
	)

	return h.Sum(nil)
}
