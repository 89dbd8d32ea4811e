package exporter

import (
	"encoding/json"
	"io"
	"os"

	"sjsage522/buildorderworker/internal/crawler"
	"sjsage522/buildorderworker/logger"
	apperrors "sjsage522/buildorderworker/pkg/errors"
)

// JSONExporter writes records as an indented JSON array. Non-ASCII text
// and HTML characters are written as-is.
type JSONExporter struct{}

// Format returns "json"
func (e *JSONExporter) Format() string { return FormatJSON }

// Export writes records to path
func (e *JSONExporter) Export(records []crawler.MatchRecord, path string) error {
	err := writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(nonNil(records))
	})
	if err != nil {
		return err
	}

	logger.ForExporter().Info().Str("path", path).Int("records", len(records)).Msg("exported JSON")
	return nil
}

func loadJSON(path string) ([]crawler.MatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewExport(path, "failed to read file", err)
	}
	var records []crawler.MatchRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewExport(path, "failed to decode JSON", err)
	}
	return records, nil
}
