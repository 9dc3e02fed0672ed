package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/lanscan/internal/model"
)

// JSONWriter outputs scan results in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indent:       false,
		indentPrefix: "",
		indentString: "",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the devices as a JSON array.
// An empty device list is written as [] rather than null so consumers can
// always range over the result.
func (w *JSONWriter) Write(devices model.Devices) (int, error) {
	if devices == nil {
		devices = model.Devices{}
	}
	return w.writeJSON(devices)
}

// WriteInventory outputs the inventory entries as a JSON array.
func (w *JSONWriter) WriteInventory(entries model.InventoryEntries) (int, error) {
	if entries == nil {
		entries = model.InventoryEntries{}
	}
	return w.writeJSON(entries)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps the device list with scan metadata.
// This is used when writing the complete report with contextual information.
//
// Design decision: We wrap the device list rather than adding fields to
// model.Device because this allows us to add output-specific fields without
// polluting the core data structure.
type JSONReport struct {
	// Version is the lanscan version that generated this report.
	Version string `json:"version"`

	// GeneratedAt is the time the report was written.
	GeneratedAt time.Time `json:"generated_at"`

	// DeviceCount is the number of devices that answered.
	DeviceCount int `json:"device_count"`

	// Devices is the sorted device list.
	Devices model.Devices `json:"devices"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(devices model.Devices, version string) *JSONReport {
	if devices == nil {
		devices = model.Devices{}
	}
	return &JSONReport{
		Version:     version,
		GeneratedAt: time.Now(),
		DeviceCount: len(devices),
		Devices:     devices,
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the lanscan version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the devices wrapped with metadata.
func (w *FullJSONWriter) Write(devices model.Devices) (int, error) {
	return w.writeJSON(NewJSONReport(devices, w.version))
}
