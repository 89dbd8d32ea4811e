package exporter

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"sjsage522/buildorderworker/config"
	"sjsage522/buildorderworker/internal/crawler"
	apperrors "sjsage522/buildorderworker/pkg/errors"
)

// Supported output formats
const (
	FormatJSON   = config.FormatJSON
	FormatYAML   = config.FormatYAML
	FormatSQLite = config.FormatSQLite
)

// Exporter writes a full snapshot of records to a destination, replacing
// whatever was there before.
type Exporter interface {
	// Format returns the output format name
	Format() string

	// Export writes records to path
	Export(records []crawler.MatchRecord, path string) error
}

// New returns the exporter for format
func New(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return &JSONExporter{}, nil
	case FormatYAML, "yml":
		return &YAMLExporter{}, nil
	case FormatSQLite:
		return &SQLiteExporter{}, nil
	default:
		return nil, apperrors.NewConfiguration("unsupported output format "+format, nil)
	}
}

// FormatFromPath infers the output format from a file extension,
// defaulting to JSON.
func FormatFromPath(path string) string {
	return config.FormatFromPath(path)
}

// Load reads back records written by the exporter for format
func Load(path, format string) ([]crawler.MatchRecord, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return loadJSON(path)
	case FormatYAML, "yml":
		return loadYAML(path)
	case FormatSQLite:
		return loadSQLite(path)
	default:
		return nil, apperrors.NewConfiguration("unsupported output format "+format, nil)
	}
}

// replaceFile lets build produce the new content at a temporary path in
// the destination directory, then renames it over path. On failure the
// previous file is left as it was.
func replaceFile(path string, build func(tmpPath string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.NewExport(path, "failed to create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return apperrors.NewExport(path, "failed to create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := tmp.Close(); err != nil {
		return apperrors.NewExport(path, "failed to create temp file", err)
	}

	if err := build(tmpPath); err != nil {
		return apperrors.NewExport(path, "failed to write records", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return apperrors.NewExport(path, "failed to set file mode", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperrors.NewExport(path, "failed to replace output file", err)
	}
	return nil
}

// writeFile streams encoded records into path through replaceFile
func writeFile(path string, write func(w io.Writer) error) error {
	return replaceFile(path, func(tmpPath string) error {
		f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return err
		}
		if err := write(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
}

func nonNil(records []crawler.MatchRecord) []crawler.MatchRecord {
	if records == nil {
		return []crawler.MatchRecord{}
	}
	return records
}
