// Package server exposes the extraction pipeline over HTTP: a health
// endpoint and a single extraction endpoint keyed by source URL.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/doktools/docmeta/internal/config"
	"github.com/doktools/docmeta/internal/extract"
	"github.com/doktools/docmeta/internal/fetch"
	"github.com/doktools/docmeta/internal/office"
)

// apiVersion is reported alongside every successful result so consumers
// can detect extraction behavior changes.
const apiVersion = 4

// Server is the HTTP front of the extraction service.
type Server struct {
	cfg       *config.Config
	extractor *extract.Service
	fetcher   *fetch.Fetcher
	converter *office.Converter
	httpSrv   *http.Server
}

// New wires the HTTP server to its collaborators.
func New(cfg *config.Config, extractor *extract.Service, fetcher *fetch.Fetcher, converter *office.Converter) *Server {
	s := &Server{
		cfg:       cfg,
		extractor: extractor,
		fetcher:   fetcher,
		converter: converter,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the request mux.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleExtract)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleExtract services GET /?url=...&apiKey=...&extension=pdf|doc|docx
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawURL := query.Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "Missing url parameter")
		return
	}
	if s.cfg.APIKey != "" && query.Get("apiKey") != s.cfg.APIKey {
		writeError(w, http.StatusForbidden, "Invalid API key")
		return
	}

	extension := strings.ToLower(query.Get("extension"))
	if extension == "" {
		extension = "pdf"
	}
	if extension != "pdf" && !office.SupportedExtension(extension) {
		writeError(w, http.StatusBadRequest, "Invalid extension parameter")
		return
	}

	result, err := s.extractFromURL(r.Context(), rawURL, extension)
	if err != nil {
		log.Printf("extraction failed for %s: %v", rawURL, err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
		"versija": apiVersion,
	})
}

func (s *Server) extractFromURL(ctx context.Context, rawURL, extension string) (*extract.Result, error) {
	data, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	opts := extract.Options{}
	if extension != "pdf" {
		data, err = s.converter.ToPDF(ctx, data, extension)
		if err != nil {
			return nil, err
		}
		// converted documents carry their own authoritative metadata
		opts.SkipPDFMetadata = true
	}

	return s.extractor.Extract(ctx, data, opts)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
