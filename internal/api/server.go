// Package api exposes the extraction pipeline over HTTP: uploads go
// through the full validate/read/extract/persist cycle, completed runs
// are listed and served back as JSON, images or XLSX, and runs can be
// deleted. Handlers follow Go 1.22 method patterns behind a
// recovery -> cors -> logging middleware chain.
package api

import (
	"net/http"

	"github.com/examtools/revalida-extract/internal/store"
)

// Server bundles the pipeline components behind the HTTP surface.
type Server struct {
	runner        *store.Runner
	artifacts     *store.Artifacts
	index         *store.Store
	version       string
	maxUploadSize int64
}

// NewServer creates the HTTP server façade.
func NewServer(runner *store.Runner, artifacts *store.Artifacts, index *store.Store, version string, maxUploadSize int64) *Server {
	if maxUploadSize <= 0 {
		maxUploadSize = 100 << 20 // 100MB
	}
	return &Server{
		runner:        runner,
		artifacts:     artifacts,
		index:         index,
		version:       version,
		maxUploadSize: maxUploadSize,
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("GET /extractions", s.handleListExtractions)
	mux.HandleFunc("GET /extractions/{id}", s.handleGetExtraction)
	mux.HandleFunc("GET /extractions/{id}/images", s.handleListImages)
	mux.HandleFunc("GET /extractions/{id}/images/{filename}", s.handleGetImage)
	mux.HandleFunc("GET /extractions/{id}/xlsx", s.handleGetXLSX)
	mux.HandleFunc("DELETE /extractions/{id}", s.handleDeleteExtraction)

	// Middleware chain: recovery -> cors -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(handler)
	return handler
}
