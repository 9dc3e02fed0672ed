package report

import (
	"io"

	"github.com/nao1215/lanscan/internal/model"
)

// Writer defines the interface for scan result output.
// Implementations render results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the scanned devices to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(devices model.Devices) (int, error)

	// WriteInventory outputs console server inventory entries.
	// This is used by the inventory collector rather than the subnet scanner.
	WriteInventory(entries model.InventoryEntries) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write device lists, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the devices to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(devices model.Devices) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(devices)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteInventory outputs the inventory entries to all configured Writers.
func (m *MultiWriter) WriteInventory(entries model.InventoryEntries) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteInventory(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
