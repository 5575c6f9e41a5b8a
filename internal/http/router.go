package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/receiptmatch/internal/http/alias"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/auth"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/export"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/importcsv"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/matching"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/receipt"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/transaction"
)

type Options struct {
	CORSOrigins []string
	// JWTSecret enables bearer auth on /api/v1 when set.
	JWTSecret string
	Timeout   time.Duration
}

type Handlers struct {
	Transactions *transaction.Handler
	Receipts     *receipt.Handler
	Import       *importcsv.Handler
	Matching     *matching.Handler
	Aliases      *alias.Handler
	Export       *export.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(auth.Middleware([]byte(opts.JWTSecret)))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/receipts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Receipts.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/matching", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Matching.Routes(r)
		})

		r.Route("/aliases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Aliases.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
