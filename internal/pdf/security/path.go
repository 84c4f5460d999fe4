package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines file access to a configured directory
type PathValidator struct {
	configuredDirectory string
}

// NewPathValidator creates a new path validator for the given directory.
// The directory does not have to exist yet; validation is skipped until it
// does so data roots can be created lazily.
func NewPathValidator(configuredDirectory string) (*PathValidator, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}

	return &PathValidator{
		configuredDirectory: configuredDirectory,
	}, nil
}

// ValidatePath checks if a path is within the configured directory
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	isWithin, err := v.IsPathWithinDirectory(absPath)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}

	if !isWithin {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}

	return nil
}

// IsPathWithinDirectory checks if a path is within the configured directory,
// resolving symlinks on both sides so a link cannot escape the root
func (v *PathValidator) IsPathWithinDirectory(path string) (bool, error) {
	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return true, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}

	absConfigDir, err := filepath.Abs(v.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absConfigDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p string) bool {
		return p == cleanDir || p == realDir ||
			strings.HasPrefix(p, cleanDir+string(filepath.Separator)) ||
			strings.HasPrefix(p, realDir+string(filepath.Separator))
	}

	// Both the literal path and its symlink-resolved form must stay inside
	return within(cleanPath) && within(realPath), nil
}

// GetConfiguredDirectory returns the configured directory path
func (v *PathValidator) GetConfiguredDirectory() string {
	return v.configuredDirectory
}

// ValidateDirectory checks if a directory path is within the configured
// directory and, when present, actually a directory
func (v *PathValidator) ValidateDirectory(dirPath string) error {
	if err := v.ValidatePath(dirPath); err != nil {
		return err
	}

	if _, err := os.Stat(v.configuredDirectory); os.IsNotExist(err) {
		return nil
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}

	return nil
}
