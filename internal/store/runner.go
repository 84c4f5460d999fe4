package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/examtools/revalida-extract/internal/extract"
	"github.com/examtools/revalida-extract/internal/pdf"
)

// ErrInvalidPDF is returned when an uploaded document fails PDF
// validation before the pipeline runs.
var ErrInvalidPDF = errors.New("store: invalid pdf input")

// RunRequest carries the inputs for one extraction run. The readers are
// consumed exactly once; Gabarito is optional.
type RunRequest struct {
	PDFName      string
	PDF          io.Reader
	GabaritoName string
	Gabarito     io.Reader
}

// RunResult couples an extraction id with the persisted outputs.
type RunResult struct {
	ID       string
	Document *ResultDocument
	Metadata *Metadata
}

// Runner drives the full pipeline for one document: persist the upload,
// validate it, read page text, extract page images, run the question
// engine and write the artifacts plus the index row. A failed run leaves
// no trace: the artifact tree is removed and no row is committed.
type Runner struct {
	artifacts *Artifacts
	index     *Store
	service   *pdf.Service
	logger    *slog.Logger
}

// NewRunner creates a runner over the given artifact tree, index and PDF
// service. The service must be confined to the artifact data root.
func NewRunner(artifacts *Artifacts, index *Store, service *pdf.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		artifacts: artifacts,
		index:     index,
		service:   service,
		logger:    logger,
	}
}

// Run executes one extraction end to end.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.PDF == nil || req.PDFName == "" {
		return nil, errors.New("store: pdf input required")
	}

	id, err := r.artifacts.CreateExtractionDir()
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rmErr := r.artifacts.Remove(id); rmErr != nil {
				r.logger.Error("failed to clean up extraction dir", "id", id, "error", rmErr)
			}
		}
	}()

	pdfPath, err := r.artifacts.SaveUpload(id, req.PDFName, req.PDF)
	if err != nil {
		return nil, err
	}

	validation, err := r.service.ValidateFile(pdf.ValidateFileRequest{Path: pdfPath})
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", req.PDFName, err)
	}
	if !validation.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPDF, validation.Message)
	}

	document, err := r.service.ReadDocument(pdf.DocumentReadRequest{Path: pdfPath})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", req.PDFName, err)
	}

	answerKeyText := ""
	gabaritoName := ""
	if req.Gabarito != nil && req.GabaritoName != "" {
		answerKeyText, err = r.readAnswerKey(id, req.GabaritoName, req.Gabarito)
		if err != nil {
			return nil, err
		}
		gabaritoName = filepath.Base(req.GabaritoName)
	}

	// Image extraction degrades to an imageless run rather than failing
	// the whole document.
	pageImages := extract.PageImages{}
	totalImages := 0
	imageResult, err := r.service.ExtractImages(pdf.ImageExtractRequest{
		Path:      pdfPath,
		OutputDir: r.artifacts.ImagesDir(id),
	})
	if err != nil {
		r.logger.Warn("image extraction failed", "id", id, "error", err)
	} else {
		pageImages = imageResult.PageImages
		totalImages = imageResult.TotalCount
	}

	result, err := extract.Extract(document.PageTexts, pageImages, answerKeyText)
	if err != nil {
		return nil, fmt.Errorf("extracting questions from %s: %w", req.PDFName, err)
	}

	now := time.Now().Format(time.RFC3339)
	doc := &ResultDocument{
		ExtractionID:    id,
		SourcePDF:       filepath.Base(pdfPath),
		AnswerKeySource: gabaritoName,
		ExtractedAt:     now,
		Diagnostics:     result.Diagnostics,
		Questions:       result.Questions,
	}
	meta := &Metadata{
		ID:                  id,
		Timestamp:           now,
		PDFFilename:         filepath.Base(pdfPath),
		GabaritoFilename:    gabaritoName,
		TotalQuestions:      result.Diagnostics.TotalQuestions,
		QuestionsWithImages: result.Diagnostics.WithImages,
		TotalImages:         totalImages,
	}

	if err := r.artifacts.WriteResult(id, doc); err != nil {
		return nil, err
	}
	if err := r.artifacts.WriteMetadata(id, meta); err != nil {
		return nil, err
	}

	if err := r.index.InsertExtraction(ctx, Extraction{
		ID:                  id,
		PDFFilename:         meta.PDFFilename,
		GabaritoFilename:    meta.GabaritoFilename,
		TotalQuestions:      meta.TotalQuestions,
		QuestionsWithImages: meta.QuestionsWithImages,
		TotalImages:         meta.TotalImages,
	}); err != nil {
		return nil, fmt.Errorf("indexing extraction: %w", err)
	}

	committed = true
	r.logger.Info("extraction complete", "id", id,
		"questions", meta.TotalQuestions, "images", totalImages)
	return &RunResult{ID: id, Document: doc, Metadata: meta}, nil
}

// readAnswerKey persists the answer-key upload next to the exam PDF and
// returns its concatenated page text.
func (r *Runner) readAnswerKey(id, name string, content io.Reader) (string, error) {
	path, err := r.artifacts.SaveUpload(id, name, content)
	if err != nil {
		return "", err
	}

	validation, err := r.service.ValidateFile(pdf.ValidateFileRequest{Path: path})
	if err != nil {
		return "", fmt.Errorf("validating %s: %w", name, err)
	}
	if !validation.Valid {
		return "", fmt.Errorf("%w: %s", ErrInvalidPDF, validation.Message)
	}

	document, err := r.service.ReadDocument(pdf.DocumentReadRequest{Path: path})
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}

	texts := make([]string, 0, len(document.PageTexts))
	for _, page := range document.PageTexts {
		texts = append(texts, page.Text)
	}
	return strings.Join(texts, "\n"), nil
}

// Delete removes an extraction's artifacts and its index row.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !r.artifacts.Exists(id) {
		return ErrExtractionNotFound
	}
	if err := r.artifacts.Remove(id); err != nil {
		return err
	}
	return r.index.DeleteExtraction(ctx, id)
}
