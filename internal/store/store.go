package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the SQLite index of completed extractions.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and applies
// the schema.
func New(dbPath string) (*Store, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InsertExtraction records a completed extraction run.
func (s *Store) InsertExtraction(ctx context.Context, e Extraction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extractions (id, pdf_filename, gabarito_filename,
			total_questions, questions_with_images, total_images)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.PDFFilename, e.GabaritoFilename,
		e.TotalQuestions, e.QuestionsWithImages, e.TotalImages)
	return err
}

// GetExtraction retrieves one extraction by id.
func (s *Store) GetExtraction(ctx context.Context, id string) (*Extraction, error) {
	e := &Extraction{}
	var gabarito sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, pdf_filename, gabarito_filename,
			total_questions, questions_with_images, total_images, created_at
		FROM extractions WHERE id = ?
	`, id).Scan(&e.ID, &e.PDFFilename, &gabarito,
		&e.TotalQuestions, &e.QuestionsWithImages, &e.TotalImages, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.GabaritoFilename = gabarito.String
	return e, nil
}

// ListExtractions returns all extractions, newest first.
func (s *Store) ListExtractions(ctx context.Context) ([]Extraction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pdf_filename, gabarito_filename,
			total_questions, questions_with_images, total_images, created_at
		FROM extractions ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var extractions []Extraction
	for rows.Next() {
		var e Extraction
		var gabarito sql.NullString
		if err := rows.Scan(&e.ID, &e.PDFFilename, &gabarito,
			&e.TotalQuestions, &e.QuestionsWithImages, &e.TotalImages, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.GabaritoFilename = gabarito.String
		extractions = append(extractions, e)
	}
	return extractions, rows.Err()
}

// DeleteExtraction removes the index row for an extraction. Deleting a
// row that does not exist is not an error.
func (s *Store) DeleteExtraction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE id = ?", id)
	return err
}

// CountExtractions returns the number of indexed extractions.
func (s *Store) CountExtractions(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM extractions").Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
