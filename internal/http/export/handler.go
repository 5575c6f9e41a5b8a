package export

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/receiptmatch/internal/export"
	"github.com/MrJamesThe3rd/receiptmatch/internal/http/respond"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.csv)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *Handler) decodeRange(w http.ResponseWriter, r *http.Request) (period.Range, bool) {
	var req exportRequest
	if !respond.Decode(w, r, &req) {
		return period.Range{}, false
	}

	rng, err := period.Parse(req.StartDate, req.EndDate)
	if err != nil {
		respond.Error(w, r, err)
		return period.Range{}, false
	}

	return rng, true
}

// csv returns the matches in the range as a CSV document, without receipt files.
func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.decodeRange(w, r)
	if !ok {
		return
	}

	items, err := h.svc.Collect(r.Context(), rng)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"matches_%s.csv\"", rng.Start.Format("200601")))

	if err := export.WriteCSV(w, items); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

// download bundles the CSV, the summary and every receipt document into a zip.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	rng, ok := h.decodeRange(w, r)
	if !ok {
		return
	}

	tmpDir, err := os.MkdirTemp("", "receiptmatch-export-*")
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer os.RemoveAll(tmpDir)

	items, err := h.svc.Export(r.Context(), rng, tmpDir)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := export.WriteIndex(tmpDir, items); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"export_%s.zip\"", time.Now().Format("20060102")))

	zipWriter := zip.NewWriter(w)
	defer zipWriter.Close()

	err = filepath.Walk(tmpDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		relPath, _ := filepath.Rel(tmpDir, path)

		zf, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(zf, f)

		return err
	})
	if err != nil {
		slog.Error("failed to create zip", "error", err)
	}
}
