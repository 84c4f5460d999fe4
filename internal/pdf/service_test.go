package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestService(t *testing.T, maxFileSize int64, dataDir string) *Service {
	t.Helper()
	service, err := NewService(maxFileSize, dataDir)
	if err != nil {
		t.Fatalf("NewService() unexpected error: %v", err)
	}
	return service
}

func TestNewService(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "service_new_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	maxFileSize := int64(1024 * 1024) // 1MB
	service := newTestService(t, maxFileSize, tempDir)

	if service.maxFileSize != maxFileSize {
		t.Errorf("Expected maxFileSize to be %d, got %d", maxFileSize, service.maxFileSize)
	}

	if service.reader == nil {
		t.Error("reader component should not be nil")
	}
	if service.validator == nil {
		t.Error("validator component should not be nil")
	}
	if service.stats == nil {
		t.Error("stats component should not be nil")
	}
	if service.assets == nil {
		t.Error("assets component should not be nil")
	}
	if service.pathValidator == nil {
		t.Error("pathValidator component should not be nil")
	}

	if _, err := NewService(maxFileSize, ""); err == nil {
		t.Error("NewService() should fail with an empty data directory")
	}
}

func TestService_GetMaxFileSize(t *testing.T) {
	maxFileSize := int64(2 * 1024 * 1024) // 2MB
	service := newTestService(t, maxFileSize, "/data/placeholder")

	result := service.GetMaxFileSize()
	if result != maxFileSize {
		t.Errorf("Expected GetMaxFileSize to return %d, got %d", maxFileSize, result)
	}
}

func TestService_ValidateConfiguration(t *testing.T) {
	tests := []struct {
		name          string
		maxFileSize   int64
		expectedError bool
		errorMsg      string
	}{
		{
			name:          "valid configuration",
			maxFileSize:   1024 * 1024, // 1MB
			expectedError: false,
		},
		{
			name:          "zero max file size",
			maxFileSize:   0,
			expectedError: true,
			errorMsg:      "maxFileSize must be greater than 0",
		},
		{
			name:          "negative max file size",
			maxFileSize:   -1,
			expectedError: true,
			errorMsg:      "maxFileSize must be greater than 0",
		},
		{
			name:          "max file size too large",
			maxFileSize:   2 * 1024 * 1024 * 1024, // 2GB
			expectedError: true,
			errorMsg:      "maxFileSize cannot exceed 1GB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, tt.maxFileSize, "/data/placeholder")
			err := service.ValidateConfiguration()

			if tt.expectedError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectedError && tt.errorMsg != "" && err != nil && err.Error() != tt.errorMsg {
				t.Errorf("expected error message '%s' but got '%s'", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestService_ValidateFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "service_validate_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	service := newTestService(t, 1024*1024, tempDir)

	testFile := filepath.Join(tempDir, "test.pdf")
	if err := os.WriteFile(testFile, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result, err := service.ValidateFile(ValidateFileRequest{Path: testFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result == nil {
		t.Fatal("result should not be nil")
	}

	if result.Path != testFile {
		t.Errorf("expected path %s but got %s", testFile, result.Path)
	}

	// The file carries no PDF header so validation must reject it
	if result.Valid {
		t.Errorf("expected file to be invalid")
	}
}

func TestService_PathConfinement(t *testing.T) {
	dataDir, err := os.MkdirTemp("", "service_confine_data")
	if err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	defer os.RemoveAll(dataDir)

	outsideDir, err := os.MkdirTemp("", "service_confine_outside")
	if err != nil {
		t.Fatalf("failed to create outside dir: %v", err)
	}
	defer os.RemoveAll(outsideDir)

	outsideFile := filepath.Join(outsideDir, "escape.pdf")
	if err := os.WriteFile(outsideFile, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to create outside file: %v", err)
	}

	service := newTestService(t, 1024*1024, dataDir)

	if _, err := service.ReadDocument(DocumentReadRequest{Path: outsideFile}); err == nil ||
		!strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("ReadDocument should reject paths outside the data dir, got %v", err)
	}
	if _, err := service.ValidateFile(ValidateFileRequest{Path: outsideFile}); err == nil ||
		!strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("ValidateFile should reject paths outside the data dir, got %v", err)
	}
	if _, err := service.FileStats(FileStatsRequest{Path: outsideFile}); err == nil ||
		!strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("FileStats should reject paths outside the data dir, got %v", err)
	}
	if _, err := service.ExtractImages(ImageExtractRequest{
		Path:      outsideFile,
		OutputDir: filepath.Join(dataDir, "out"),
	}); err == nil || !strings.Contains(err.Error(), "security validation failed") {
		t.Errorf("ExtractImages should reject paths outside the data dir, got %v", err)
	}
}

func TestService_IsValidPDF(t *testing.T) {
	service := newTestService(t, 1024*1024, "/data/placeholder")

	tests := []struct {
		name     string
		filePath string
		expected bool
	}{
		{
			name:     "empty path",
			filePath: "",
			expected: false,
		},
		{
			name:     "non-existent file",
			filePath: "/non/existent/file.pdf",
			expected: false,
		},
		{
			name:     "non-PDF extension",
			filePath: "/path/to/document.txt",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := service.IsValidPDF(tt.filePath)
			if result != tt.expected {
				t.Errorf("expected %v but got %v", tt.expected, result)
			}
		})
	}
}

func TestService_ListPDFs(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "service_list_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	subDir := filepath.Join(tempDir, "sub")
	if err := os.Mkdir(subDir, 0o755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}

	pdfFiles := []string{"doc1.pdf", "doc2.pdf", filepath.Join("sub", "doc3.pdf")}
	nonPdfFiles := []string{"doc.txt", "image.jpg"}

	for _, filename := range append(pdfFiles, nonPdfFiles...) {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, make([]byte, 1024), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	service := newTestService(t, 1024*1024, tempDir)

	files, err := service.ListPDFs(tempDir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != len(pdfFiles) {
		t.Errorf("expected %d files but got %d", len(pdfFiles), len(files))
	}
	for _, f := range files {
		if !strings.HasSuffix(f.Name, ".pdf") {
			t.Errorf("non-PDF file returned: %s", f.Name)
		}
	}

	limited, err := service.ListPDFs(tempDir, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit of 2 files but got %d", len(limited))
	}

	// Empty directory argument falls back to the configured data dir
	fallback, err := service.ListPDFs("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fallback) != len(pdfFiles) {
		t.Errorf("expected %d files from fallback dir but got %d", len(pdfFiles), len(fallback))
	}
}

func TestService_GetSupportedImageFormats(t *testing.T) {
	service := newTestService(t, 1024*1024, "/data/placeholder")

	formats := service.GetSupportedImageFormats()
	if len(formats) == 0 {
		t.Error("expected at least one supported image format")
	}
}

func TestService_ServerInfo(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "service_info_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	if err := os.WriteFile(filepath.Join(tempDir, "prova.pdf"), make([]byte, 512), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	service := newTestService(t, 1024*1024, tempDir)

	result, err := service.ServerInfo("revalida-extract", "1.0.0", tempDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ServerName != "revalida-extract" {
		t.Errorf("expected server name revalida-extract, got %s", result.ServerName)
	}
	if result.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %s", result.Version)
	}
	if result.DataDirectory != tempDir {
		t.Errorf("expected data directory %s, got %s", tempDir, result.DataDirectory)
	}
	if result.MaxFileSize != 1024*1024 {
		t.Errorf("expected max file size %d, got %d", 1024*1024, result.MaxFileSize)
	}
	if len(result.DirectoryContents) != 1 {
		t.Errorf("expected 1 file in directory contents, got %d", len(result.DirectoryContents))
	}
	if result.UsageGuidance == "" {
		t.Error("expected usage guidance text")
	}
	if len(result.SupportedFormats) == 0 {
		t.Error("expected supported formats")
	}

	wantTools := []string{
		"exam_extract_file",
		"exam_answer_key",
		"exam_repair_text",
		"pdf_validate_file",
		"pdf_stats_file",
		"exam_server_info",
	}
	if len(result.AvailableTools) != len(wantTools) {
		t.Fatalf("expected %d tools, got %d", len(wantTools), len(result.AvailableTools))
	}
	for i, want := range wantTools {
		if result.AvailableTools[i].Name != want {
			t.Errorf("tool[%d] = %s, want %s", i, result.AvailableTools[i].Name, want)
		}
		if result.AvailableTools[i].Description == "" {
			t.Errorf("tool %s has no description", want)
		}
	}
}

func TestService_ReadDocument_ErrorHandling(t *testing.T) {
	service := newTestService(t, 1024*1024, "/data/placeholder")

	result, err := service.ReadDocument(DocumentReadRequest{Path: ""})
	if err == nil {
		t.Error("expected error for empty path")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
}

func TestService_FileStats_ErrorHandling(t *testing.T) {
	service := newTestService(t, 1024*1024, "/data/placeholder")

	result, err := service.FileStats(FileStatsRequest{Path: ""})
	if err == nil {
		t.Error("expected error for empty path")
	}
	if result != nil {
		t.Error("result should be nil on error")
	}
}
