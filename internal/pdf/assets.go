package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/examtools/revalida-extract/internal/extract"
)

// Assets handles PDF image payload extraction
type Assets struct {
	maxFileSize int64
	validator   *Validator
}

// NewAssets creates a new PDF assets extractor with the specified constraints
func NewAssets(maxFileSize int64) *Assets {
	return &Assets{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
	}
}

// extractedImageRe matches the file names pdfcpu emits for extracted images:
// <basename>_<page>_<resource>.<ext>
var extractedImageRe = regexp.MustCompile(`^.*_(\d+)_[^.]*\.([A-Za-z0-9]+)$`)

// ExtractImages extracts every image payload from a PDF into req.OutputDir,
// renaming the files to page_<page>_img_<n>.<ext> so they can be associated
// with the page a question starts on.
func (a *Assets) ExtractImages(req ImageExtractRequest) (*ImageExtractResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if req.OutputDir == "" {
		return nil, fmt.Errorf("output directory cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := a.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ExtractImagesFile(req.Path, req.OutputDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract images: %w", err)
	}

	images, pageImages, err := a.collectExtracted(req.OutputDir)
	if err != nil {
		return nil, err
	}

	result := &ImageExtractResult{
		Path:       req.Path,
		OutputDir:  req.OutputDir,
		Images:     images,
		TotalCount: len(images),
		PageImages: pageImages,
	}

	return result, nil
}

// collectExtracted renames the files pdfcpu produced to the page_N_img_M
// scheme and groups them by page number
func (a *Assets) collectExtracted(outputDir string) ([]ImageInfo, extract.PageImages, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read output directory: %w", err)
	}

	type extractedFile struct {
		name string
		page int
		ext  string
	}

	var files []extractedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := extractedImageRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		page, err := strconv.Atoi(m[1])
		if err != nil || page < 1 {
			continue
		}
		files = append(files, extractedFile{
			name: entry.Name(),
			page: page,
			ext:  strings.ToLower(m[2]),
		})
	}

	// Deterministic numbering: page order first, emitted name within a page
	sort.Slice(files, func(i, j int) bool {
		if files[i].page != files[j].page {
			return files[i].page < files[j].page
		}
		return files[i].name < files[j].name
	})

	images := make([]ImageInfo, 0, len(files))
	pageImages := make(extract.PageImages)
	perPage := make(map[int]int)

	for _, f := range files {
		perPage[f.page]++
		newName := fmt.Sprintf("page_%d_img_%d.%s", f.page, perPage[f.page], f.ext)

		oldPath := filepath.Join(outputDir, f.name)
		newPath := filepath.Join(outputDir, newName)
		if f.name != newName {
			if err := os.Rename(oldPath, newPath); err != nil {
				return nil, nil, fmt.Errorf("cannot rename extracted image: %w", err)
			}
		}

		size := int64(0)
		if info, err := os.Stat(newPath); err == nil {
			size = info.Size()
		}

		images = append(images, ImageInfo{
			PageNumber: f.page,
			FileName:   newName,
			Format:     f.ext,
			Size:       size,
		})
		pageImages[f.page] = append(pageImages[f.page], newName)
	}

	return images, pageImages, nil
}

// GetSupportedFormats returns the image formats extraction can produce
func (a *Assets) GetSupportedFormats() []string {
	return []string{
		"png",
		"jpg",
		"jp2",
		"tiff",
		"webp",
	}
}
