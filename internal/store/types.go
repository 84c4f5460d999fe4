package store

import (
	"github.com/examtools/revalida-extract/internal/extract"
)

// Extraction represents a row in the extractions table.
type Extraction struct {
	ID                  string `json:"id"`
	PDFFilename         string `json:"pdf_filename"`
	GabaritoFilename    string `json:"gabarito_filename,omitempty"`
	TotalQuestions      int    `json:"total_questions"`
	QuestionsWithImages int    `json:"questions_with_images"`
	TotalImages         int    `json:"total_images"`
	CreatedAt           string `json:"created_at"`
}

// Metadata mirrors the metadata.json file inside an extraction directory.
type Metadata struct {
	ID                  string `json:"id"`
	Timestamp           string `json:"timestamp"`
	PDFFilename         string `json:"pdf_filename"`
	GabaritoFilename    string `json:"gabarito_filename,omitempty"`
	TotalQuestions      int    `json:"total_questions"`
	QuestionsWithImages int    `json:"questions_with_images"`
	TotalImages         int    `json:"total_images"`
}

// ResultDocument is the questions_<id>.json payload: the assembled
// question records wrapped with run metadata.
type ResultDocument struct {
	ExtractionID    string              `json:"extraction_id"`
	SourcePDF       string              `json:"source_pdf"`
	AnswerKeySource string              `json:"answer_key_source,omitempty"`
	ExtractedAt     string              `json:"extracted_at"`
	Diagnostics     extract.Diagnostics `json:"diagnostics"`
	Questions       []extract.Question  `json:"questions"`
}
