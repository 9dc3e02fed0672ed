package report

import (
	"io"
	"strconv"

	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs scan results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the devices as a Markdown document with a device table,
// a product distribution chart, and a product summary.
func (w *MarkdownWriter) Write(devices model.Devices) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("SNMP Scan Report")
	md.PlainText("")

	if len(devices) == 0 {
		md.Note("No snmp devices responded on this subnet.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	w.writeDevices(md, devices)
	w.writeProducts(md, devices)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteInventory outputs the console inventory as a Markdown document.
func (w *MarkdownWriter) WriteInventory(entries model.InventoryEntries) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Console Inventory Report")
	md.PlainText("")

	if len(entries) == 0 {
		md.Note("No inventory entries collected.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
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

	md.Table(markdown.TableSet{
		Header: []string{"Console", "Port", "Device", "ProductName", "Collected"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeDevices writes the device table section.
func (w *MarkdownWriter) writeDevices(md *markdown.Markdown, devices model.Devices) {
	md.H2("Devices")
	md.PlainText("")

	rows := make([][]string, len(devices))
	for i, device := range devices {
		rows[i] = []string{"`" + device.Addr + "`", device.Product}
	}

	md.Table(markdown.TableSet{
		Header: []string{"IP", "ProductName"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeProducts writes the product summary table and distribution chart.
func (w *MarkdownWriter) writeProducts(md *markdown.Markdown, devices model.Devices) {
	groups := devices.GroupByProduct()
	if len(groups) == 0 {
		return
	}

	md.H2("Products")
	md.PlainText("")

	// Iterate devices rather than the map to keep first-seen order.
	seen := make(map[string]bool, len(groups))
	rows := make([][]string, 0, len(groups))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Product Distribution"),
		piechart.WithShowData(true),
	)
	for _, device := range devices {
		if seen[device.Product] {
			continue
		}
		seen[device.Product] = true
		count := len(groups[device.Product])
		rows = append(rows, []string{device.Product, strconv.Itoa(count)})
		chart.LabelAndIntValue(device.Product, uint64(count))
	}

	md.Table(markdown.TableSet{
		Header: []string{"Product", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [lanscan](https://github.com/nao1215/lanscan)*")
}
