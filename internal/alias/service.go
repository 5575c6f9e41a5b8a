package alias

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/receiptmatch/internal/apperror"
	"github.com/MrJamesThe3rd/receiptmatch/internal/encoding"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=alias
type Repository interface {
	// FindVendor returns the vendor of the longest learned key contained in
	// counterpartyKey, or "" when nothing matches.
	FindVendor(ctx context.Context, counterpartyKey string) (string, error)
	SaveAlias(ctx context.Context, counterpartyKey, vendor string) error
	ListAliases(ctx context.Context) (map[string]string, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Key folds a bank counterparty into the form aliases are stored under.
func Key(counterparty string) string {
	return strings.Join(strings.Fields(encoding.Fold(counterparty)), " ")
}

// Suggest returns the vendor best known for the counterparty, or "" if none.
func (s *Service) Suggest(ctx context.Context, counterparty string) (string, error) {
	key := Key(counterparty)
	if key == "" {
		return "", nil
	}

	return s.repo.FindVendor(ctx, key)
}

// Learn remembers that the counterparty shows up on receipts as vendor.
func (s *Service) Learn(ctx context.Context, counterparty, vendor string) error {
	key := Key(counterparty)
	vendor = strings.TrimSpace(vendor)

	if key == "" || vendor == "" {
		return &apperror.ValidationError{Entity: "alias", Field: "counterparty", Reason: "counterparty and vendor are required"}
	}

	if err := s.repo.SaveAlias(ctx, key, vendor); err != nil {
		return fmt.Errorf("saving alias: %w", err)
	}

	return nil
}

// Snapshot returns every learned alias keyed by Key(counterparty).
func (s *Service) Snapshot(ctx context.Context) (map[string]string, error) {
	aliases, err := s.repo.ListAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing aliases: %w", err)
	}

	return aliases, nil
}
