//go:build cgo

package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleExtraction(id string) Extraction {
	return Extraction{
		ID:                  id,
		PDFFilename:         "prova.pdf",
		GabaritoFilename:    "gabarito.pdf",
		TotalQuestions:      100,
		QuestionsWithImages: 12,
		TotalImages:         15,
	}
}

func TestNew(t *testing.T) {
	s := newTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil *sql.DB")
	}
}

func TestNewCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

func TestInsertAndGetExtraction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := sampleExtraction("20240115_103000")
	if err := s.InsertExtraction(ctx, e); err != nil {
		t.Fatalf("inserting extraction: %v", err)
	}

	got, err := s.GetExtraction(ctx, e.ID)
	if err != nil {
		t.Fatalf("getting extraction: %v", err)
	}
	if got.ID != e.ID {
		t.Errorf("id: got %q, want %q", got.ID, e.ID)
	}
	if got.PDFFilename != "prova.pdf" {
		t.Errorf("pdf_filename: got %q", got.PDFFilename)
	}
	if got.GabaritoFilename != "gabarito.pdf" {
		t.Errorf("gabarito_filename: got %q", got.GabaritoFilename)
	}
	if got.TotalQuestions != 100 {
		t.Errorf("total_questions: got %d", got.TotalQuestions)
	}
	if got.QuestionsWithImages != 12 {
		t.Errorf("questions_with_images: got %d", got.QuestionsWithImages)
	}
	if got.TotalImages != 15 {
		t.Errorf("total_images: got %d", got.TotalImages)
	}
	if got.CreatedAt == "" {
		t.Error("expected created_at to be populated")
	}
}

func TestGetExtractionNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetExtraction(ctx, "19990101_000000")
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestInsertExtractionWithoutGabarito(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := sampleExtraction("20240115_103001")
	e.GabaritoFilename = ""
	if err := s.InsertExtraction(ctx, e); err != nil {
		t.Fatalf("inserting: %v", err)
	}

	got, err := s.GetExtraction(ctx, e.ID)
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if got.GabaritoFilename != "" {
		t.Errorf("gabarito_filename: got %q, want empty", got.GabaritoFilename)
	}
}

func TestInsertExtractionDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := sampleExtraction("20240115_103002")
	if err := s.InsertExtraction(ctx, e); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := s.InsertExtraction(ctx, e); err == nil {
		t.Fatal("expected primary key violation on duplicate id")
	}
}

func TestListExtractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids := []string{"20240115_103000", "20240115_104500", "20240116_090000"}
	for _, id := range ids {
		if err := s.InsertExtraction(ctx, sampleExtraction(id)); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	extractions, err := s.ListExtractions(ctx)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(extractions) != 3 {
		t.Fatalf("expected 3 extractions, got %d", len(extractions))
	}

	// Rows created in the same second fall back to id ordering, which for
	// timestamp ids is also newest first.
	if extractions[0].ID != "20240116_090000" {
		t.Errorf("first listed id: got %q", extractions[0].ID)
	}
	if extractions[2].ID != "20240115_103000" {
		t.Errorf("last listed id: got %q", extractions[2].ID)
	}
}

func TestDeleteExtraction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := sampleExtraction("20240115_103000")
	if err := s.InsertExtraction(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.DeleteExtraction(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := s.GetExtraction(ctx, e.ID)
	if err != sql.ErrNoRows {
		t.Fatalf("expected row gone, got err=%v", err)
	}

	// Deleting a missing row is a no-op.
	if err := s.DeleteExtraction(ctx, "19990101_000000"); err != nil {
		t.Fatalf("delete of missing row should not error: %v", err)
	}
}

func TestCountExtractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CountExtractions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}

	for _, id := range []string{"20240115_103000", "20240115_103001"} {
		if err := s.InsertExtraction(ctx, sampleExtraction(id)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	count, err = s.CountExtractions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}
