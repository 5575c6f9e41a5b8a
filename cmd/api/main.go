package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/receiptmatch/internal/app"
	"github.com/MrJamesThe3rd/receiptmatch/internal/config"
	apiHttp "github.com/MrJamesThe3rd/receiptmatch/internal/http"
	aliasHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/alias"
	exportHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/matching"
	receiptHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/receipt"
	txHandler "github.com/MrJamesThe3rd/receiptmatch/internal/http/transaction"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := apiHttp.New(apiHttp.Handlers{
		Transactions: txHandler.NewHandler(a.Transactions),
		Receipts:     receiptHandler.NewHandler(a.Receipts),
		Import:       importHandler.NewHandler(a.Import, a.Transactions, a.Receipts),
		Matching:     matchingHandler.NewHandler(a.Sync, a.Ledger),
		Aliases:      aliasHandler.NewHandler(a.Aliases),
		Export:       exportHandler.NewHandler(a.Export),
	}, apiHttp.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		JWTSecret:   cfg.Auth.JWTSecret,
		Timeout:     cfg.Server.Timeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", srv.Addr, "verifier", cfg.Verifier.Provider, "poster", cfg.Poster.Provider)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
