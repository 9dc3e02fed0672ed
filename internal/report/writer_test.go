package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/lanscan/internal/model"
)

// testDevices returns a sorted device list with sample data for testing.
func testDevices() model.Devices {
	return model.Devices{
		{Addr: "172.16.40.5", Product: "PL-4000T"},
		{Addr: "172.16.40.9", Product: "PL-1000IL"},
		{Addr: "172.16.40.200", Product: "PL-1000IL"},
	}
}

// testEntries returns inventory entries with sample data for testing.
func testEntries() model.InventoryEntries {
	collected := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	return model.InventoryEntries{
		{
			ConsoleAddr: "10.30.6.50",
			ConsolePort: 2001,
			DeviceAddr:  "10.30.6.101",
			Product:     "PL-1000GT",
			CollectedAt: collected,
		},
	}
}

// TestTableWriter tests the plain-text table writer.
func TestTableWriter(t *testing.T) {
	t.Parallel()

	t.Run("aligns columns to the widest value", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTableWriter(&buf)

		n, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := strings.Join([]string{
			"IP             ProductName",
			"-------------  -----------",
			"172.16.40.5    PL-4000T   ",
			"172.16.40.9    PL-1000IL  ",
			"172.16.40.200  PL-1000IL  ",
			"",
		}, "\n")
		if got := buf.String(); got != want {
			t.Errorf("expected:\n%q\ngot:\n%q", want, got)
		}
		if n != len(want) {
			t.Errorf("expected %d bytes written, got %d", len(want), n)
		}
	})

	t.Run("wide product name stretches the second column", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTableWriter(&buf)

		devices := model.Devices{
			{Addr: "10.0.0.1", Product: "PL-4000T-EXTENDED-EDITION"},
		}
		if _, err := w.Write(devices); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := strings.Join([]string{
			"IP        ProductName              ",
			"--------  -------------------------",
			"10.0.0.1  PL-4000T-EXTENDED-EDITION",
			"",
		}, "\n")
		if got := buf.String(); got != want {
			t.Errorf("expected:\n%q\ngot:\n%q", want, got)
		}
	})

	t.Run("empty device list prints placeholder", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTableWriter(&buf)

		if _, err := w.Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := buf.String(); got != "No snmp devices\n" {
			t.Errorf("expected placeholder line, got %q", got)
		}
	})

	t.Run("writes inventory table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTableWriter(&buf)

		if _, err := w.WriteInventory(testEntries()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Console") {
			t.Error("expected Console header")
		}
		if !strings.Contains(output, "10.30.6.50") {
			t.Error("expected console address in output")
		}
		if !strings.Contains(output, "2026-08-24 10:30:00") {
			t.Error("expected collected timestamp in output")
		}
	})

	t.Run("empty inventory prints placeholder", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewTableWriter(&buf)

		if _, err := w.WriteInventory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := buf.String(); got != "No inventory entries\n" {
			t.Errorf("expected placeholder line, got %q", got)
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.Devices
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if len(parsed) != 3 {
			t.Fatalf("expected 3 devices, got %d", len(parsed))
		}
		if parsed[0].Addr != "172.16.40.5" {
			t.Errorf("expected first device %q, got %q", "172.16.40.5", parsed[0].Addr)
		}
		if parsed[0].Product != "PL-4000T" {
			t.Errorf("expected product %q, got %q", "PL-4000T", parsed[0].Product)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})

	t.Run("nil devices serialize as empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.Write(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("expected empty array, got %q", got)
		}
	})

	t.Run("inventory entries round-trip", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		_, err := w.WriteInventory(testEntries())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.InventoryEntries
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(parsed) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(parsed))
		}
		if parsed[0].ConsolePort != 2001 {
			t.Errorf("expected console port 2001, got %d", parsed[0].ConsolePort)
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version and device count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.0.0", WithPrettyPrint())

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.0.0" {
			t.Errorf("expected version %q, got %q", "1.0.0", parsed.Version)
		}
		if parsed.DeviceCount != 3 {
			t.Errorf("expected device count 3, got %d", parsed.DeviceCount)
		}
		if parsed.GeneratedAt.IsZero() {
			t.Error("expected generated_at to be set")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewTableWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)

		_, err := multi.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (table) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})

	t.Run("writes inventory to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		multi := NewMultiWriter(NewTableWriter(&buf1), NewJSONWriter(&buf2))

		n, err := multi.WriteInventory(testEntries())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}
		if buf1.Len() == 0 || buf2.Len() == 0 {
			t.Error("expected both buffers to have content")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()

		n, err := multi.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header and device table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# SNMP Scan Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "## Devices") {
			t.Error("expected output to contain devices section")
		}
		if !strings.Contains(output, "172.16.40.5") {
			t.Error("expected output to contain device address")
		}
		if !strings.Contains(output, "PL-4000T") {
			t.Error("expected output to contain product name")
		}
	})

	t.Run("writes product summary with distribution chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Products") {
			t.Error("expected output to contain products section")
		}
		if !strings.Contains(output, "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
		if !strings.Contains(output, "Product Distribution") {
			t.Error("expected output to contain chart title")
		}
	})

	t.Run("empty device list produces a note", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!NOTE]") {
			t.Error("expected NOTE alert for empty results")
		}
		if !strings.Contains(output, "No snmp devices") {
			t.Error("expected empty-result message")
		}
	})

	t.Run("writes inventory document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.WriteInventory(testEntries())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Console Inventory Report") {
			t.Error("expected output to contain inventory header")
		}
		if !strings.Contains(output, "10.30.6.101") {
			t.Error("expected output to contain device address")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		_, err := w.Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "https://github.com/nao1215/lanscan") {
			t.Error("expected footer with repository link")
		}
	})
}
