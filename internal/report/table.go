package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/lanscan/internal/model"
)

// TableWriter outputs plain-text tables for terminal display.
// Column widths grow to fit the widest value, columns are separated by two
// spaces, and a dash rule sits between the header and the rows.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TableWriter struct {
	baseWriter
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer) *TableWriter {
	return &TableWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the devices as an IP/ProductName table.
// An empty device list produces the single line "No snmp devices".
func (w *TableWriter) Write(devices model.Devices) (int, error) {
	if len(devices) == 0 {
		return io.WriteString(w.output, "No snmp devices\n")
	}

	rows := make([][]string, len(devices))
	for i, device := range devices {
		rows[i] = []string{device.Addr, device.Product}
	}

	var sb strings.Builder
	writeColumns(&sb, []string{"IP", "ProductName"}, rows)
	return io.WriteString(w.output, sb.String())
}

// WriteInventory outputs the console inventory as a table.
// An empty entry list produces the single line "No inventory entries".
func (w *TableWriter) WriteInventory(entries model.InventoryEntries) (int, error) {
	if len(entries) == 0 {
		return io.WriteString(w.output, "No inventory entries\n")
	}

	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = []string{
			entry.ConsoleAddr,
			strconv.Itoa(entry.ConsolePort),
			entry.DeviceAddr,
			entry.Product,
			entry.CollectedAt.Format("2006-01-02 15:04:05"),
		}
	}

	var sb strings.Builder
	writeColumns(&sb, []string{"Console", "Port", "Device", "ProductName", "Collected"}, rows)
	return io.WriteString(w.output, sb.String())
}

// writeColumns renders a padded table. Every column is left-justified to
// the width of its widest cell or header, whichever is larger.
func writeColumns(sb *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = len(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	writeRow(sb, headers, widths)

	rule := make([]string, len(headers))
	for i := range rule {
		rule[i] = strings.Repeat("-", widths[i])
	}
	writeRow(sb, rule, widths)

	for _, row := range rows {
		writeRow(sb, row, widths)
	}
}

// writeRow writes one table line with a two-space gutter between columns.
func writeRow(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cell)
		if pad := widths[i] - len(cell); pad > 0 {
			sb.WriteString(strings.Repeat(" ", pad))
		}
	}
	sb.WriteString("\n")
}
