package metrics

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter writes snapshots as JSON documents
type JSONExporter struct {
	writer io.Writer
	pretty bool
}

// JSONOption is a functional option for JSONExporter
type JSONOption func(*JSONExporter)

// WithJSONWriter sets the output writer for JSON metrics
func WithJSONWriter(w io.Writer) JSONOption {
	return func(j *JSONExporter) {
		j.writer = w
	}
}

// WithJSONPretty toggles indentation
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

// NewJSONExporter creates a new JSON metrics exporter
func NewJSONExporter(opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{pretty: true}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

func (j *JSONExporter) Export(s *Snapshot) error {
	if j.writer == nil {
		return fmt.Errorf("json exporter has no writer")
	}
	enc := json.NewEncoder(j.writer)
	if j.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
