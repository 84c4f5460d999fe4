package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/examtools/revalida-extract/internal/pdf/security"
)

// Service handles PDF file operations by orchestrating the PDF components
type Service struct {
	maxFileSize   int64
	reader        *Reader
	validator     *Validator
	stats         *Stats
	assets        *Assets
	pathValidator *security.PathValidator
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64, configuredDirectory string) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		reader:        NewReader(maxFileSize),
		validator:     NewValidator(maxFileSize),
		stats:         NewStats(maxFileSize),
		assets:        NewAssets(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// ReadDocument reads the per-page text of a PDF file
func (s *Service) ReadDocument(req DocumentReadRequest) (*DocumentReadResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.reader.ReadDocument(req)
}

// ExtractImages extracts image payloads from a PDF file into a directory
func (s *Service) ExtractImages(req ImageExtractRequest) (*ImageExtractResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.assets.ExtractImages(req)
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// FileStats returns detailed statistics about a single PDF file
func (s *Service) FileStats(req FileStatsRequest) (*FileStatsResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.stats.GetFileStats(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// ListPDFs walks a directory collecting valid PDF files, newest first,
// up to limit entries
func (s *Service) ListPDFs(directory string, limit int) ([]FileInfo, error) {
	if directory == "" {
		directory = s.pathValidator.GetConfiguredDirectory()
	}
	if err := s.pathValidator.ValidateDirectory(directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	var files []FileInfo
	err := filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // Skip unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
			return nil
		}
		if s.validator.ValidateFileInfo(path, info) != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedTime > files[j].ModifiedTime
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	return files, nil
}

// GetSupportedImageFormats returns the image formats asset extraction can emit
func (s *Service) GetSupportedImageFormats() []string {
	return s.assets.GetSupportedFormats()
}

// ServerInfo returns server information and usage guidance
func (s *Service) ServerInfo(serverName, version, dataDirectory string) (*ServerInfoResult, error) {
	validatedDir := dataDirectory
	if err := s.pathValidator.ValidateDirectory(dataDirectory); err != nil {
		validatedDir = s.pathValidator.GetConfiguredDirectory()
	}

	// Scan the data directory with a timeout so a slow filesystem cannot
	// hang the info call
	directoryContents := []FileInfo{}
	resultChan := make(chan []FileInfo, 1)
	errorChan := make(chan error, 1)

	go func() {
		files, err := s.ListPDFs(validatedDir, 100)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- files
	}()

	select {
	case files := <-resultChan:
		directoryContents = files
	case <-errorChan:
		directoryContents = []FileInfo{}
	case <-time.After(5 * time.Second):
		directoryContents = []FileInfo{}
	}

	availableTools := []ToolInfo{
		{
			Name:        "exam_extract_file",
			Description: "Run the full exam extraction pipeline on a PDF file",
			Usage: "Use this tool to turn an exam PDF into structured question records. " +
				"Pass gabarito_path when the answer key ships as a separate PDF.",
			Parameters: "path (required): Full absolute path to the exam PDF, " +
				"gabarito_path (optional): Full absolute path to a separate answer-key PDF",
		},
		{
			Name:        "exam_answer_key",
			Description: "Scan a PDF for an answer key section and return the number to letter map",
			Usage:       "Use this tool when you only need the official answers from a document.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "exam_repair_text",
			Description: "Recover inline options A-E from a question stem",
			Usage: "Use this tool on question text whose options were not separated into lines. " +
				"Returns the cleaned stem and any options that could be recovered.",
			Parameters: "text (required): The question text to repair",
		},
		{
			Name:        "pdf_validate_file",
			Description: "Validate if a file is a readable PDF",
			Usage:       "Use this tool to check if a file is a valid PDF before attempting to extract it.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_stats_file",
			Description: "Get detailed statistics about a PDF file",
			Usage:       "Use this tool to get metadata, page count, file size, and document properties of a PDF.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "exam_server_info",
			Description: "Get server capabilities and data directory contents",
			Usage:       "Use this tool to discover available operations and which PDFs are present.",
			Parameters:  "none",
		},
	}

	usageGuidance := `Exam Extraction Server Usage Guide:

1. DISCOVER:
   - Use 'exam_server_info' to see which PDFs are available in the data directory

2. VALIDATE:
   - Use 'pdf_validate_file' to check a file is readable before processing
   - Use 'pdf_stats_file' for page count and document metadata

3. EXTRACT:
   - Use 'exam_extract_file' to run the full pipeline; the response carries
     every question with stem, options A-E, official answer and image refs
   - Pass gabarito_path when the official answers ship as a separate PDF
   - Use 'exam_answer_key' alone when only the number to letter map is needed

4. REPAIR:
   - Use 'exam_repair_text' on a stem whose options were glued into one line

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- Scanned exam PDFs yield page images but no extractable question text`

	result := &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DataDirectory:     validatedDir,
		MaxFileSize:       s.maxFileSize,
		AvailableTools:    availableTools,
		DirectoryContents: directoryContents,
		UsageGuidance:     usageGuidance,
		SupportedFormats:  s.GetSupportedImageFormats(),
	}

	return result, nil
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}
