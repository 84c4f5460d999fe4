package pdf

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestNewAssets(t *testing.T) {
	tests := []struct {
		name        string
		maxFileSize int64
	}{
		{
			name:        "standard max file size",
			maxFileSize: 100 * 1024 * 1024, // 100MB
		},
		{
			name:        "small max file size",
			maxFileSize: 1024, // 1KB
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assets := NewAssets(tt.maxFileSize)
			if assets == nil {
				t.Error("NewAssets() returned nil")
				return
			}
			if assets.maxFileSize != tt.maxFileSize {
				t.Errorf("NewAssets() maxFileSize = %v, want %v", assets.maxFileSize, tt.maxFileSize)
			}
			if assets.validator == nil {
				t.Error("NewAssets() validator is nil")
			}
		})
	}
}

func TestAssets_ExtractImages_Errors(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_assets_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	outputDir := filepath.Join(tempDir, "out")

	testTxtPath := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testTxtPath, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("Failed to create test txt file: %v", err)
	}

	emptyPDFPath := filepath.Join(tempDir, "empty.pdf")
	if err := os.WriteFile(emptyPDFPath, nil, 0o644); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	corruptPDFPath := filepath.Join(tempDir, "corrupt.pdf")
	if err := os.WriteFile(corruptPDFPath, []byte("%PDF-1.4\nnot really a pdf"), 0o644); err != nil {
		t.Fatalf("Failed to create corrupt test file: %v", err)
	}

	assets := NewAssets(1024 * 1024)

	tests := []struct {
		name   string
		req    ImageExtractRequest
		errMsg string
	}{
		{
			name:   "empty path",
			req:    ImageExtractRequest{Path: "", OutputDir: outputDir},
			errMsg: "path cannot be empty",
		},
		{
			name:   "empty output dir",
			req:    ImageExtractRequest{Path: corruptPDFPath, OutputDir: ""},
			errMsg: "output directory cannot be empty",
		},
		{
			name:   "non-existent file",
			req:    ImageExtractRequest{Path: filepath.Join(tempDir, "missing.pdf"), OutputDir: outputDir},
			errMsg: "file does not exist",
		},
		{
			name:   "non-PDF file",
			req:    ImageExtractRequest{Path: testTxtPath, OutputDir: outputDir},
			errMsg: "file is not a PDF",
		},
		{
			name:   "empty file",
			req:    ImageExtractRequest{Path: emptyPDFPath, OutputDir: outputDir},
			errMsg: "file is empty",
		},
		{
			name:   "corrupt PDF",
			req:    ImageExtractRequest{Path: corruptPDFPath, OutputDir: outputDir},
			errMsg: "failed to extract images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := assets.ExtractImages(tt.req)
			if err == nil {
				t.Fatalf("ExtractImages() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ExtractImages() error = %v, want error containing %v", err, tt.errMsg)
			}
			if result != nil {
				t.Errorf("ExtractImages() expected nil result on error, got %v", result)
			}
		})
	}
}

func TestExtractedImageRe(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		wantPage int // 0 means no match expected
		wantExt  string
	}{
		{
			name:     "standard pdfcpu name",
			fileName: "exam_3_Im1.png",
			wantPage: 3,
			wantExt:  "png",
		},
		{
			name:     "base name containing digit groups",
			fileName: "prova_2024_final_12_Im0.tiff",
			wantPage: 12,
			wantExt:  "tiff",
		},
		{
			name:     "already renamed file",
			fileName: "page_2_img_1.png",
			wantPage: 2,
			wantExt:  "png",
		},
		{
			name:     "no page component",
			fileName: "readme.txt",
			wantPage: 0,
		},
		{
			name:     "no extension",
			fileName: "exam_3_Im1",
			wantPage: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := extractedImageRe.FindStringSubmatch(tt.fileName)
			if tt.wantPage == 0 {
				if m != nil {
					t.Errorf("expected no match for %q, got %v", tt.fileName, m)
				}
				return
			}
			if m == nil {
				t.Fatalf("expected match for %q", tt.fileName)
			}
			page, err := strconv.Atoi(m[1])
			if err != nil || page != tt.wantPage {
				t.Errorf("page = %v (err %v), want %v", m[1], err, tt.wantPage)
			}
			if strings.ToLower(m[2]) != tt.wantExt {
				t.Errorf("ext = %v, want %v", m[2], tt.wantExt)
			}
		})
	}
}

func TestAssets_collectExtracted(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "pdf_collect_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	// Files in the shape pdfcpu leaves behind, plus noise
	seed := map[string]string{
		"exam_1_Im0.jpg":  "aaaa",
		"exam_1_Im1.jpg":  "bb",
		"exam_2_Im0.png":  "cccccc",
		"exam_10_Im0.png": "dd",
		"notes.txt":       "ignore me",
	}
	for name, content := range seed {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to seed %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tempDir, "nested"), 0o755); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	assets := NewAssets(1024 * 1024)
	images, pageImages, err := assets.collectExtracted(tempDir)
	if err != nil {
		t.Fatalf("collectExtracted() unexpected error: %v", err)
	}

	if len(images) != 4 {
		t.Fatalf("collectExtracted() returned %d images, want 4", len(images))
	}

	wantNames := []string{
		"page_1_img_1.jpg",
		"page_1_img_2.jpg",
		"page_2_img_1.png",
		"page_10_img_1.png",
	}
	for i, want := range wantNames {
		if images[i].FileName != want {
			t.Errorf("images[%d].FileName = %s, want %s", i, images[i].FileName, want)
		}
		if _, err := os.Stat(filepath.Join(tempDir, want)); err != nil {
			t.Errorf("expected renamed file %s on disk: %v", want, err)
		}
	}

	if images[0].PageNumber != 1 || images[2].PageNumber != 2 || images[3].PageNumber != 10 {
		t.Errorf("unexpected page numbers: %+v", images)
	}
	if images[0].Size != 4 || images[1].Size != 2 {
		t.Errorf("unexpected sizes: %+v", images[:2])
	}
	if images[0].Format != "jpg" || images[2].Format != "png" {
		t.Errorf("unexpected formats: %+v", images)
	}

	wantPages := map[int][]string{
		1:  {"page_1_img_1.jpg", "page_1_img_2.jpg"},
		2:  {"page_2_img_1.png"},
		10: {"page_10_img_1.png"},
	}
	for page, want := range wantPages {
		if !reflect.DeepEqual(pageImages[page], want) {
			t.Errorf("pageImages[%d] = %v, want %v", page, pageImages[page], want)
		}
	}

	// The noise file must be untouched
	if _, err := os.Stat(filepath.Join(tempDir, "notes.txt")); err != nil {
		t.Errorf("noise file should be untouched: %v", err)
	}

	// A second pass over the renamed directory must be a no-op
	imagesAgain, _, err := assets.collectExtracted(tempDir)
	if err != nil {
		t.Fatalf("collectExtracted() second pass error: %v", err)
	}
	for i := range imagesAgain {
		if imagesAgain[i].FileName != images[i].FileName {
			t.Errorf("second pass renamed %s to %s", images[i].FileName, imagesAgain[i].FileName)
		}
	}
}

func TestAssets_GetSupportedFormats(t *testing.T) {
	assets := NewAssets(1024)
	formats := assets.GetSupportedFormats()
	if len(formats) == 0 {
		t.Error("GetSupportedFormats() returned empty list")
	}
	found := false
	for _, f := range formats {
		if f == "png" {
			found = true
		}
	}
	if !found {
		t.Error("GetSupportedFormats() should include png")
	}
}
