// Package server is the thin HTTP front door: it translates multipart
// snapshot uploads into TableStores, runs the audit pipeline and streams
// the result workbook back. Every decision lives in the core packages.
package server

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/domain"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/export"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/ingestion"
)

// maxUploadBytes caps one audit request. Snapshot dumps for a full region
// stay well under this.
const maxUploadBytes = 512 << 20

// Handler serves the audit endpoints.
type Handler struct {
	cfg      config.Config
	exporter *export.Service
}

// NewHandler builds the HTTP handler.
func NewHandler(cfg config.Config, exporter *export.Service) *Handler {
	return &Handler{cfg: cfg, exporter: exporter}
}

// Routes registers the endpoints on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/audit", h.handleAudit)
	mux.HandleFunc("/healthz", h.handleHealth)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleAudit accepts a multipart form with "pre" and "post" file fields
// (any number of each, at least one side required), runs the pipeline and
// responds with the workbook.
func (h *Handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, fmt.Sprintf("parse upload: %v", err), http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	runID := uuid.NewString()
	start := time.Now()

	pre, err := storeFromUploads(r.MultipartForm.File["pre"])
	if err != nil {
		http.Error(w, fmt.Sprintf("pre snapshot: %v", err), http.StatusBadRequest)
		return
	}
	post, err := storeFromUploads(r.MultipartForm.File["post"])
	if err != nil {
		http.Error(w, fmt.Sprintf("post snapshot: %v", err), http.StatusBadRequest)
		return
	}
	if pre == nil && post == nil {
		http.Error(w, "no snapshot files uploaded", http.StatusBadRequest)
		return
	}

	report := RunReport(h.cfg, pre, post)

	workbook, err := h.exporter.Render(report)
	if err != nil {
		log.Printf("[AUDIT] run %s failed: %v", runID, err)
		http.Error(w, "failed to render workbook", http.StatusInternalServerError)
		return
	}
	defer func() { _ = workbook.Close() }()

	fileName := fmt.Sprintf("RetuningAudit_%s.xlsx", runID[:8])
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := workbook.Write(w); err != nil {
		log.Printf("[AUDIT] run %s: stream workbook: %v", runID, err)
		return
	}
	log.Printf("[AUDIT] run %s completed in %s", runID, time.Since(start))
}

// storeFromUploads parses every uploaded file of one snapshot side into a
// shared TableStore. Nil is returned when the side has no files.
func storeFromUploads(files []*multipart.FileHeader) (*domain.TableStore, error) {
	if len(files) == 0 {
		return nil, nil
	}
	store := domain.NewTableStore()
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		payload, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		if err := ingestion.ParseSnapshot(store, fh.Filename, payload); err != nil {
			return nil, fmt.Errorf("parse %s: %w", fh.Filename, err)
		}
	}
	return store, nil
}
