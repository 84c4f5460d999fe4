package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/examtools/revalida-extract/internal/extract"
)

// Reader handles PDF text reading operations
type Reader struct {
	maxFileSize int64
	maxTextSize int
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
	}
}

// ReadDocument extracts per-page text content from a PDF file. Pages whose
// text cannot be decoded are reported with empty text so page numbering
// stays aligned with the document.
func (r *Reader) ReadDocument(req DocumentReadRequest) (*DocumentReadResult, error) {
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

	if err := r.validatePDFFile(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, pdfReader, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageTexts := r.extractPageTexts(pdfReader)
	hasImages, imageCount := r.detectImages(pdfReader)
	contentType := r.analyzeContentType(pageTexts, hasImages)

	result := &DocumentReadResult{
		Path:        req.Path,
		Pages:       pdfReader.NumPage(),
		Size:        fileInfo.Size(),
		ContentType: contentType,
		HasImages:   hasImages,
		ImageCount:  imageCount,
		PageTexts:   pageTexts,
	}

	return result, nil
}

// validatePDFFile performs basic validation on a PDF file
func (r *Reader) validatePDFFile(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() > r.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), r.maxFileSize)
	}

	return nil
}

// extractPageTexts extracts text from every page of a PDF reader. A page
// decode failure yields an empty entry rather than aborting the document,
// and the cumulative text is capped at maxTextSize.
func (r *Reader) extractPageTexts(pdfReader *pdf.Reader) []extract.PageText {
	numPages := pdfReader.NumPage()
	pageTexts := make([]extract.PageText, 0, numPages)
	totalLength := 0

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		text := ""
		if totalLength < r.maxTextSize {
			text = r.readPageText(pdfReader, pageNum)
			if totalLength+len(text) > r.maxTextSize {
				text = text[:r.maxTextSize-totalLength]
			}
			totalLength += len(text)
		}

		pageTexts = append(pageTexts, extract.PageText{
			PageNumber: pageNum,
			Text:       text,
		})
	}

	return pageTexts
}

// readPageText returns the plain text of a single page, or "" on failure
func (r *Reader) readPageText(pdfReader *pdf.Reader, pageNum int) string {
	defer func() {
		// Recover from panics inside the content stream decoder
		recover()
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}

	return content
}

// analyzeContentType determines the type of content in the PDF
func (r *Reader) analyzeContentType(pageTexts []extract.PageText, hasImages bool) string {
	// Minimum text length to consider content meaningful
	const minMeaningfulTextLength = 50

	totalLength := 0
	for _, pt := range pageTexts {
		totalLength += len(strings.TrimSpace(pt.Text))
	}

	if totalLength < minMeaningfulTextLength {
		if hasImages {
			return "scanned_images"
		}
		return "no_content"
	}

	if hasImages {
		return "mixed"
	}

	return "text"
}

// detectImages scans the PDF for image objects
func (r *Reader) detectImages(pdfReader *pdf.Reader) (bool, int) {
	imageCount := 0

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		imageCount += r.countImagesOnPage(pdfReader, pageNum)
	}

	return imageCount > 0, imageCount
}

// countImagesOnPage counts image XObjects on a specific page
func (r *Reader) countImagesOnPage(pdfReader *pdf.Reader, pageNum int) int {
	defer func() {
		// Recover from any panics during image detection
		recover()
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return 0
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0
	}

	// Images live in the XObject dictionary
	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	imageCount := 0
	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}

		subtype := obj.Key("Subtype")
		if subtype.IsNull() || subtype.Name() != "Image" {
			continue
		}

		imageCount++
	}

	return imageCount
}
