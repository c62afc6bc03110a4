// Package chi exposes the HTTP API: note upload and retrieval, pipeline
// runs, structure export, usage and health.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
	healthuc "github.com/inkdex/inkdex/internal/usecase/health"
	ingestuc "github.com/inkdex/inkdex/internal/usecase/ingest"
	organizeuc "github.com/inkdex/inkdex/internal/usecase/organize"
	usageuc "github.com/inkdex/inkdex/internal/usecase/usage"
)

// maxUploadBytes bounds note file uploads.
const maxUploadBytes = 32 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the API handlers.
type Server struct {
	ingest        *ingestuc.Service
	notes         *organizeuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	notes *organizeuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest: ingest,
		notes:  notes,
		usage:  usage,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoteNotFound, http.StatusNotFound, "note_not_found"),
		sentinelHandler(domain.ErrAnalysisNotFound, http.StatusNotFound, "analysis_not_found"),
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnsupportedMediaType, "unsupported_format"),
		sentinelHandler(domain.ErrMalformedElement, http.StatusBadRequest, "malformed_element"),
		sentinelHandler(domain.ErrOCRBudgetExceeded, http.StatusPaymentRequired, "ocr_budget_exceeded"),
		sentinelHandler(domain.ErrOCRProviderError, http.StatusBadGateway, "ocr_provider_error"),
		sentinelHandler(domain.ErrNoProviderAvailable, http.StatusBadGateway, "no_provider_available"),
	}
	return s
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/notes", s.UploadNote)
		r.Get("/notes", s.ListNotes)
		r.Get("/notes/{id}", s.GetNote)
		r.Delete("/notes/{id}", s.DeleteNote)
		r.Post("/notes/{id}/organize", s.OrganizeNote)
		r.Get("/notes/{id}/analysis", s.GetAnalysis)
		r.Get("/notes/{id}/structures", s.ListStructures)
		r.Get("/notes/{id}/export", s.ExportStructure)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UploadNote handles POST /api/v1/notes. The body is a multipart form with a
// "file" part and an optional "quality" field (also accepted as a query
// parameter).
func (s *Server) UploadNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", `missing "file" part`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "read upload: "+err.Error())
		return
	}

	qualityParam := r.FormValue("quality")
	if qualityParam == "" {
		qualityParam = r.URL.Query().Get("quality")
	}
	quality, err := ocr.ParseQuality(qualityParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	note, err := s.ingest.Ingest(r.Context(), header.Filename, data, quality)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// organize=true runs the pipeline inline; the analysis is persisted and
	// retrievable via GET /notes/{id}/analysis.
	if organize, _ := strconv.ParseBool(r.URL.Query().Get("organize")); organize {
		if _, err := s.notes.Organize(r.Context(), note.ID); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	w.Header().Set("Location", "/api/v1/notes/"+note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /api/v1/notes.
func (s *Server) ListNotes(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	notes, nextCursor, err := s.notes.ListNotes(r.Context(), cursor, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := struct {
		Items      []domain.Note `json:"items"`
		HasMore    bool          `json:"has_more"`
		NextCursor string        `json:"next_cursor,omitempty"`
	}{
		Items:      notes,
		HasMore:    nextCursor != "",
		NextCursor: nextCursor,
	}
	if resp.Items == nil {
		resp.Items = []domain.Note{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote handles GET /api/v1/notes/{id}.
func (s *Server) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.GetNote(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/v1/notes/{id}.
func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.DeleteNote(r.Context(), chirouter.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrganizeNote handles POST /api/v1/notes/{id}/organize.
func (s *Server) OrganizeNote(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.notes.Organize(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GetAnalysis handles GET /api/v1/notes/{id}/analysis.
func (s *Server) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.notes.GetAnalysis(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// ListStructures handles GET /api/v1/notes/{id}/structures. Structures come
// back in ranked order.
func (s *Server) ListStructures(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.notes.GetAnalysis(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := struct {
		Items []domain.GeneratedStructure `json:"items"`
	}{Items: analysis.Structures}
	if resp.Items == nil {
		resp.Items = []domain.GeneratedStructure{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ExportStructure handles GET /api/v1/notes/{id}/export. The "type" query
// parameter selects a structure type; absent, the top-ranked structure is
// exported.
func (s *Server) ExportStructure(w http.ResponseWriter, r *http.Request) {
	structureType := domain.StructureType(r.URL.Query().Get("type"))
	switch structureType {
	case "", domain.StructureOutline, domain.StructureMindmap, domain.StructureTimeline, domain.StructureProcess:
	default:
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown structure type "+strconv.Quote(string(structureType)))
		return
	}

	md, err := s.notes.Export(r.Context(), chirouter.URLParam(r, "id"), structureType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, md)
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period := usageuc.Period(r.URL.Query().Get("period"))
	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, report)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoteNotFound,
		domain.ErrAnalysisNotFound,
		domain.ErrUnsupportedFormat,
		domain.ErrMalformedElement,
		domain.ErrOCRBudgetExceeded,
		domain.ErrOCRProviderError,
		domain.ErrNoProviderAvailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
