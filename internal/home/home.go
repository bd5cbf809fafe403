// Package home manages the pagemark home directory and per-document output layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the default name for the pagemark home directory.
	DefaultDirName = ".pagemark"

	// OutputDirName is the subdirectory for conversion output.
	OutputDirName = "output"

	// ImagesDirName is the subdirectory (inside a document's output dir)
	// holding extracted figure/table images.
	ImagesDirName = "images"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the pagemark home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.pagemark).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// OutputPath returns the path to the output directory.
func (d *Dir) OutputPath() string {
	return filepath.Join(d.path, OutputDirName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.OutputPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// DocumentDir returns the output directory for a single document conversion.
func (d *Dir) DocumentDir(baseName string) string {
	return filepath.Join(d.OutputPath(), baseName)
}

// ImagesDir returns the extracted-images directory for a document.
func (d *Dir) ImagesDir(baseName string) string {
	return filepath.Join(d.DocumentDir(baseName), ImagesDirName)
}

// AssetPath returns the on-disk path for a named asset image.
func (d *Dir) AssetPath(baseName, assetName, format string) string {
	return filepath.Join(d.ImagesDir(baseName), fmt.Sprintf("%s.%s", assetName, format))
}

// AnnotatedPath returns the path for the primary annotated markdown stream.
func (d *Dir) AnnotatedPath(baseName string) string {
	return filepath.Join(d.DocumentDir(baseName), fmt.Sprintf("%s-converted.md", baseName))
}

// ReferencesPath returns the path for the secondary bibliography stream.
func (d *Dir) ReferencesPath(baseName string) string {
	return filepath.Join(d.DocumentDir(baseName), fmt.Sprintf("%s-references-converted.md", baseName))
}

// EnsureDocumentDir creates the output and images directories for a document.
func (d *Dir) EnsureDocumentDir(baseName string) error {
	return os.MkdirAll(d.ImagesDir(baseName), 0o755)
}

// BaseName derives a document base name from a PDF path.
// e.g. "papers/attention-is-all-you-need.pdf" -> "attention-is-all-you-need"
func BaseName(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
