package exporter

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"sjsage522/buildorderworker/internal/crawler"
	"sjsage522/buildorderworker/logger"
	apperrors "sjsage522/buildorderworker/pkg/errors"
)

// YAMLExporter writes records as a YAML sequence
type YAMLExporter struct{}

// Format returns "yaml"
func (e *YAMLExporter) Format() string { return FormatYAML }

// Export writes records to path
func (e *YAMLExporter) Export(records []crawler.MatchRecord, path string) error {
	err := writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(nonNil(records)); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return err
	}

	logger.ForExporter().Info().Str("path", path).Int("records", len(records)).Msg("exported YAML")
	return nil
}

func loadYAML(path string) ([]crawler.MatchRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewExport(path, "failed to read file", err)
	}
	var records []crawler.MatchRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, apperrors.NewExport(path, "failed to decode YAML", err)
	}
	return records, nil
}
