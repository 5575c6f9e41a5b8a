package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/receiptmatch/internal/alias"
	aliasStore "github.com/MrJamesThe3rd/receiptmatch/internal/alias/store"
	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
	"github.com/MrJamesThe3rd/receiptmatch/internal/database"
	"github.com/MrJamesThe3rd/receiptmatch/internal/escalation"
	"github.com/MrJamesThe3rd/receiptmatch/internal/export"
	"github.com/MrJamesThe3rd/receiptmatch/internal/importer"
	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/receiptmatch/internal/ledger/store"
	"github.com/MrJamesThe3rd/receiptmatch/internal/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/poster"
	"github.com/MrJamesThe3rd/receiptmatch/internal/receipt"
	receiptStore "github.com/MrJamesThe3rd/receiptmatch/internal/receipt/store"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
	txStore "github.com/MrJamesThe3rd/receiptmatch/internal/transaction/store"
	"github.com/MrJamesThe3rd/receiptmatch/internal/verifier"
)

// App is the fully wired service graph used by every binary.
type App struct {
	DB           *sql.DB
	Transactions *transaction.Service
	Receipts     *receipt.Service
	Aliases      *alias.Service
	Ledger       *ledger.Service
	Sync         *reconcile.Service
	Import       *importer.Service
	Export       *export.Service

	closers []io.Closer
}

// New connects to the database, applies the schema and builds the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	a := &App{DB: db, closers: []io.Closer{db}}

	if err := database.Migrate(ctx, db); err != nil {
		a.Close()
		return nil, err
	}

	categories := matching.DefaultCategoryMap()
	if cfg.Matching.CategoryMapFile != "" {
		if categories, err = matching.LoadCategoryMapFile(cfg.Matching.CategoryMapFile); err != nil {
			a.Close()
			return nil, err
		}
	}

	v, err := a.newVerifier(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	p, err := newPoster(cfg, categories, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	engineCfg, routerCfg := cfg.MatchingOptions()

	routerOpts := []escalation.Option{escalation.WithLogger(logger)}
	if v != nil {
		routerOpts = append(routerOpts, escalation.WithVerifier(v))
	}

	a.Transactions = transaction.NewService(txStore.New(db))
	a.Receipts = receipt.NewService(receiptStore.New(db))
	a.Aliases = alias.NewService(aliasStore.New(db))
	a.Ledger = ledger.NewService(ledgerStore.New(db), ledger.WithLogger(logger))
	a.Import = importer.NewService()
	a.Export = export.NewService(a.Ledger, a.Transactions, a.Receipts, cfg.Export.DocumentToken)

	a.Sync = reconcile.NewService(
		a.Transactions,
		a.Receipts,
		a.Aliases,
		a.Ledger,
		escalation.NewRouter(routerCfg, routerOpts...),
		engineCfg,
		reconcile.WithPoster(p),
		reconcile.WithLogger(logger),
		reconcile.WithEngineOptions(
			matching.WithWorkers(cfg.Workers()),
			matching.WithCategoryMap(categories),
			matching.WithLogger(logger),
		),
	)

	return a, nil
}

// newVerifier returns nil when no provider is configured; the router then
// sends ambiguous transactions straight to human review.
func (a *App) newVerifier(ctx context.Context, cfg *config.Config, logger *slog.Logger) (escalation.Verifier, error) {
	var v escalation.Verifier

	switch cfg.Verifier.Provider {
	case "gemini":
		g, err := verifier.NewGemini(ctx, cfg.Verifier.GeminiAPIKey, cfg.Verifier.GeminiModel)
		if err != nil {
			return nil, err
		}

		a.closers = append(a.closers, g)
		v = g
	case "ollama":
		v = verifier.NewOllama(cfg.Verifier.OllamaURL, cfg.Verifier.OllamaModel)
	default:
		return nil, nil
	}

	if cfg.Verifier.CachePath == "" {
		return v, nil
	}

	cache, err := verifier.NewCache(cfg.Verifier.CachePath, v, logger)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, cache)

	return cache, nil
}

func newPoster(cfg *config.Config, categories matching.CategoryMap, logger *slog.Logger) (reconcile.Poster, error) {
	if cfg.Poster.Provider != "fiken" {
		return poster.NewLog(logger), nil
	}

	accounts := poster.DefaultAccountMap()
	if cfg.Poster.AccountMapFile != "" {
		var err error
		if accounts, err = poster.LoadAccountMapFile(cfg.Poster.AccountMapFile); err != nil {
			return nil, err
		}
	}

	f, err := poster.NewFiken(poster.FikenConfig{
		BaseURL:     cfg.Poster.FikenURL,
		Token:       cfg.Poster.FikenToken,
		CompanySlug: cfg.Poster.FikenCompany,
		Accounts:    accounts,
		Categories:  categories,
	})
	if err != nil {
		return nil, fmt.Errorf("creating fiken poster: %w", err)
	}

	return f, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
