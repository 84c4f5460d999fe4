package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/examtools/revalida-extract/internal/export"
	"github.com/examtools/revalida-extract/internal/store"
)

// GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "revalida-extract",
		"version": s.version,
		"endpoints": []string{
			"POST /extract",
			"GET /extractions",
			"GET /extractions/{id}",
			"GET /extractions/{id}/images",
			"GET /extractions/{id}/images/{filename}",
			"GET /extractions/{id}/xlsx",
			"DELETE /extractions/{id}",
			"GET /healthz",
		},
	})
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// POST /extract
// Multipart upload: pdf_file (required, .pdf), gabarito_file (optional).
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("pdf_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "pdf_file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeError(w, http.StatusBadRequest, "pdf_file must be a .pdf file")
		return
	}

	req := store.RunRequest{
		PDFName: filepath.Base(header.Filename),
		PDF:     file,
	}
	if gabarito, gabaritoHeader, err := r.FormFile("gabarito_file"); err == nil {
		defer gabarito.Close()
		req.GabaritoName = filepath.Base(gabaritoHeader.Filename)
		req.Gabarito = gabarito
	}

	result, err := s.runner.Run(r.Context(), req)
	if err != nil {
		if errors.Is(err, store.ErrInvalidPDF) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "extraction failed")
		slog.Error("extraction failed", "filename", req.PDFName, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result.Document)
}

// GET /extractions
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	extractions, err := s.index.ListExtractions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list extractions")
		slog.Error("list extractions error", "error", err)
		return
	}
	if extractions == nil {
		extractions = []store.Extraction{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extractions": extractions,
		"total":       len(extractions),
	})
}

// GET /extractions/{id}
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.artifacts.LoadResult(id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GET /extractions/{id}/images
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	images, err := s.artifacts.ListImages(id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"extraction_id": id,
		"images":        images,
		"total":         len(images),
	})
}

// GET /extractions/{id}/images/{filename}
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	filename := r.PathValue("filename")

	path, err := s.artifacts.ImagePath(id, filename)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}
	http.ServeFile(w, r, path)
}

// GET /extractions/{id}/xlsx
func (s *Server) handleGetXLSX(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := s.artifacts.LoadResult(id)
	if err != nil {
		writeStoreError(w, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=questions_%s.xlsx", id))
	if err := export.WriteQuestions(w, doc.Questions); err != nil {
		slog.Error("xlsx export error", "id", id, "error", err)
	}
}

// DELETE /extractions/{id}
func (s *Server) handleDeleteExtraction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.runner.Delete(r.Context(), id); err != nil {
		writeStoreError(w, id, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

func writeStoreError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidExtractionID), errors.Is(err, store.ErrInvalidImageName):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrExtractionNotFound), errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, fmt.Sprintf("extraction %s not found", id))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
		slog.Error("store error", "id", id, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
