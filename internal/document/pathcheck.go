package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator restricts file access to a configured base directory.
type PathValidator struct {
	baseDirectory string
}

// NewPathValidator creates a path validator rooted at the given
// directory. The directory does not need to exist yet.
func NewPathValidator(baseDirectory string) (*PathValidator, error) {
	if baseDirectory == "" {
		return nil, fmt.Errorf("base directory cannot be empty")
	}
	return &PathValidator{baseDirectory: baseDirectory}, nil
}

// BaseDirectory returns the configured base directory.
func (v *PathValidator) BaseDirectory() string {
	return v.baseDirectory
}

// ValidatePath checks that path resolves inside the base directory.
// If the base directory does not exist yet, validation is skipped.
func (v *PathValidator) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if _, err := os.Stat(v.baseDirectory); os.IsNotExist(err) {
		return nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(v.baseDirectory)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanBase := filepath.Clean(absBase)

	// Resolve symlinks on both sides so links cannot escape the base.
	if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
		cleanPath = resolved
	}
	if resolved, err := filepath.EvalSymlinks(cleanBase); err == nil {
		cleanBase = resolved
	}

	baseWithSep := cleanBase
	if !strings.HasSuffix(baseWithSep, string(filepath.Separator)) {
		baseWithSep += string(filepath.Separator)
	}
	if cleanPath != cleanBase && !strings.HasPrefix(cleanPath, baseWithSep) {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}

	return nil
}
