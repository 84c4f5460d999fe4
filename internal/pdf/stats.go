package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Stats handles PDF statistics operations
type Stats struct {
	maxFileSize int64
	validator   *Validator
}

// NewStats creates a new PDF stats analyzer with the specified constraints
func NewStats(maxFileSize int64) *Stats {
	return &Stats{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// GetFileStats returns detailed statistics about a single PDF file
func (s *Stats) GetFileStats(req FileStatsRequest) (*FileStatsResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := s.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &FileStatsResult{
		Path:         req.Path,
		Size:         fileInfo.Size(),
		Pages:        r.NumPage(),
		ModifiedDate: fileInfo.ModTime().Format("2006-01-02 15:04:05"),
	}

	s.extractMetadata(r, result)

	return result, nil
}

// extractMetadata safely extracts document metadata from the trailer Info
// dictionary
func (s *Stats) extractMetadata(r *pdf.Reader, result *FileStatsResult) {
	defer func() {
		// Recover from any panics during metadata extraction
		if recover() != nil {
			// Metadata extraction failed, but we can continue with basic stats
		}
	}()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return
	}

	if title := info.Key("Title"); !title.IsNull() {
		if titleStr := title.String(); titleStr != "" {
			result.Title = strings.TrimSpace(titleStr)
		}
	}

	if author := info.Key("Author"); !author.IsNull() {
		if authorStr := author.String(); authorStr != "" {
			result.Author = strings.TrimSpace(authorStr)
		}
	}

	if subject := info.Key("Subject"); !subject.IsNull() {
		if subjectStr := subject.String(); subjectStr != "" {
			result.Subject = strings.TrimSpace(subjectStr)
		}
	}

	if producer := info.Key("Producer"); !producer.IsNull() {
		if producerStr := producer.String(); producerStr != "" {
			result.Producer = strings.TrimSpace(producerStr)
		}
	}

	if creationDate := info.Key("CreationDate"); !creationDate.IsNull() {
		if dateStr := creationDate.String(); dateStr != "" {
			result.CreatedDate = strings.TrimSpace(dateStr)
		}
	}
}
