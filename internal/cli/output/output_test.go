package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"", FormatTable, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTable_Render(t *testing.T) {
	table := &Table{Headers: []string{"ID", "TEXT"}, Footer: []string{"Total: 2"}}
	table.AddRow("1", "hello\nworld")
	table.AddRow("22", "")

	var buf bytes.Buffer
	if err := table.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "TEXT") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "hello world") {
		t.Errorf("newlines should be flattened: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "-") {
		t.Errorf("empty cell should render as '-': %q", lines[2])
	}
	if lines[4] != "Total: 2" {
		t.Errorf("footer = %q", lines[4])
	}
	// Columns are aligned.
	if strings.Index(lines[1], "hello") != strings.Index(lines[0], "TEXT") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

type tabularThing struct{ name string }

func (t tabularThing) Table() *Table {
	return KeyValue("name", t.name)
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, tabularThing{name: "abc"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "FIELD") {
		t.Error("NoHeaders should suppress the header row")
	}
	if !strings.Contains(buf.String(), "abc") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"n": 1}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "n: 1" {
		t.Errorf("fallback output = %q, want YAML", buf.String())
	}
}

func TestJSONAndYAML(t *testing.T) {
	data := map[string]any{"id": 7, "lang": "en"}

	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"lang": "en"`) {
		t.Errorf("json = %q", buf.String())
	}

	buf.Reset()
	if err := NewFormatter(FormatYAML).Format(&buf, data); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "id: 7\nlang: en\n" {
		t.Errorf("yaml = %q", buf.String())
	}
}

type orderView struct{ url string }

func (v orderView) Value() any { return map[string]string{"pay_at": v.url} }

func TestFormatters_UseMachineValue(t *testing.T) {
	view := orderView{url: "https://pay.example.com/?ref=ord-3&lang=uk"}

	tests := []struct {
		name   string
		format Formatter
		want   string
	}{
		{"json", &JSONFormatter{}, "{\n  \"pay_at\": \"https://pay.example.com/?ref=ord-3&lang=uk\"\n}\n"},
		{"json tab indent", &JSONFormatter{Indent: "\t"}, "{\n\t\"pay_at\": \"https://pay.example.com/?ref=ord-3&lang=uk\"\n}\n"},
		{"yaml", &YAMLFormatter{}, "pay_at: https://pay.example.com/?ref=ord-3&lang=uk\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.format.Format(&buf, view); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("привіт світ", 8); got != "приві..." {
		t.Errorf("Truncate() = %q", got)
	}
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "waiting")
	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Success("paid")
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "waiting") {
		t.Errorf("spinner never drew: %q", out)
	}
	if !strings.HasSuffix(out, "✓ paid\n") {
		t.Errorf("output = %q, want success line last", out)
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, "x")
	s.Fail("boom")
	if !strings.Contains(buf.String(), "✗ boom") {
		t.Errorf("output = %q", buf.String())
	}
}
