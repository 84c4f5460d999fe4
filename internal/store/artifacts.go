package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	// ErrExtractionNotFound is returned when no artifact tree exists for
	// the requested extraction id.
	ErrExtractionNotFound = errors.New("store: extraction not found")

	// ErrInvalidExtractionID is returned for ids that do not match the
	// generated id format.
	ErrInvalidExtractionID = errors.New("store: invalid extraction id")

	// ErrInvalidImageName is returned for image filenames that are empty
	// or carry path elements.
	ErrInvalidImageName = errors.New("store: invalid image filename")
)

// extractionIDRe matches generated run ids: a timestamp plus an optional
// collision suffix.
var extractionIDRe = regexp.MustCompile(`^\d{8}_\d{6}(_\d+)?$`)

// Artifacts manages the on-disk layout of extraction runs under a data
// root:
//
//	extractions/<id>/<uploaded>.pdf
//	extractions/<id>/output/questions_<id>.json
//	extractions/<id>/output/images/page_<p>_img_<i>.<ext>
//	extractions/<id>/metadata.json
type Artifacts struct {
	root string
}

// NewArtifacts prepares the artifact tree under the given data root.
func NewArtifacts(root string) (*Artifacts, error) {
	if root == "" {
		return nil, errors.New("store: data root cannot be empty")
	}
	if err := os.MkdirAll(filepath.Join(root, "extractions"), 0755); err != nil {
		return nil, fmt.Errorf("creating extractions root: %w", err)
	}
	return &Artifacts{root: root}, nil
}

// Root returns the data root directory.
func (a *Artifacts) Root() string {
	return a.root
}

// CreateExtractionDir allocates a fresh extraction directory with the
// output/images subtree and returns its id. Ids are timestamps; a run
// started in the same second as an existing one gets a numeric suffix.
func (a *Artifacts) CreateExtractionDir() (string, error) {
	return a.createDir(time.Now().Format("20060102_150405"))
}

func (a *Artifacts) createDir(base string) (string, error) {
	id := base
	for n := 2; ; n++ {
		err := os.Mkdir(a.ExtractionDir(id), 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("creating extraction dir: %w", err)
		}
		if n > 100 {
			return "", fmt.Errorf("creating extraction dir: no free id for %s", base)
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
	if err := os.MkdirAll(a.ImagesDir(id), 0755); err != nil {
		os.RemoveAll(a.ExtractionDir(id))
		return "", fmt.Errorf("creating output dirs: %w", err)
	}
	return id, nil
}

// ExtractionDir returns the directory holding one run's artifacts.
func (a *Artifacts) ExtractionDir(id string) string {
	return filepath.Join(a.root, "extractions", id)
}

// OutputDir returns the output directory of a run.
func (a *Artifacts) OutputDir(id string) string {
	return filepath.Join(a.ExtractionDir(id), "output")
}

// ImagesDir returns the extracted-images directory of a run.
func (a *Artifacts) ImagesDir(id string) string {
	return filepath.Join(a.OutputDir(id), "images")
}

// QuestionsPath returns the path of the result JSON of a run.
func (a *Artifacts) QuestionsPath(id string) string {
	return filepath.Join(a.OutputDir(id), fmt.Sprintf("questions_%s.json", id))
}

// MetadataPath returns the path of the metadata JSON of a run.
func (a *Artifacts) MetadataPath(id string) string {
	return filepath.Join(a.ExtractionDir(id), "metadata.json")
}

// SaveUpload streams an uploaded file into the extraction directory.
// Any path elements in the client-supplied filename are discarded.
func (a *Artifacts) SaveUpload(id, filename string, r io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("store: unusable upload filename %q", filename)
	}

	path := filepath.Join(a.ExtractionDir(id), name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	return path, nil
}

// WriteResult serializes the result document to questions_<id>.json.
func (a *Artifacts) WriteResult(id string, doc *ResultDocument) error {
	return writeJSON(a.QuestionsPath(id), doc)
}

// WriteMetadata serializes the run metadata to metadata.json.
func (a *Artifacts) WriteMetadata(id string, meta *Metadata) error {
	return writeJSON(a.MetadataPath(id), meta)
}

// LoadResult reads the result document of a completed run.
func (a *Artifacts) LoadResult(id string) (*ResultDocument, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	doc := &ResultDocument{}
	if err := readJSON(a.QuestionsPath(id), doc); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrExtractionNotFound
		}
		return nil, err
	}
	return doc, nil
}

// LoadMetadata reads the metadata of a completed run.
func (a *Artifacts) LoadMetadata(id string) (*Metadata, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	meta := &Metadata{}
	if err := readJSON(a.MetadataPath(id), meta); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrExtractionNotFound
		}
		return nil, err
	}
	return meta, nil
}

// Exists reports whether an artifact tree exists for the id.
func (a *Artifacts) Exists(id string) bool {
	if validateID(id) != nil {
		return false
	}
	info, err := os.Stat(a.ExtractionDir(id))
	return err == nil && info.IsDir()
}

// ListImages returns the sorted image filenames of a run.
func (a *Artifacts) ListImages(id string) ([]string, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if !a.Exists(id) {
		return nil, ErrExtractionNotFound
	}

	entries, err := os.ReadDir(a.ImagesDir(id))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading images dir: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ImagePath resolves an image filename inside a run to its full path.
// Filenames carrying path elements are rejected.
func (a *Artifacts) ImagePath(id, filename string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}
	if filename == "" || filename != filepath.Base(filename) ||
		strings.Contains(filename, "..") {
		return "", ErrInvalidImageName
	}

	path := filepath.Join(a.ImagesDir(id), filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrExtractionNotFound
	}
	return path, nil
}

// Remove deletes the whole artifact tree of a run. Removing a run that
// does not exist is not an error.
func (a *Artifacts) Remove(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return os.RemoveAll(a.ExtractionDir(id))
}

// ListIDs returns the extraction ids present on disk, newest first.
func (a *Artifacts) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.root, "extractions"))
	if err != nil {
		return nil, fmt.Errorf("reading extractions root: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() && extractionIDRe.MatchString(entry.Name()) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

func validateID(id string) error {
	if !extractionIDRe.MatchString(id) {
		return ErrInvalidExtractionID
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
