package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type fakeListing struct {
	rows [][]string
}

func (f fakeListing) TableHeader() []string { return []string{"NAME", "KIND"} }
func (f fakeListing) TableRows() [][]string { return f.rows }

func TestParseFormat(t *testing.T) {
	for _, ok := range []string{"json", "yaml", "table"} {
		if _, err := ParseFormat(ok); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", ok, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	env := NewEnvelope("symbols", map[string]int{"functions": 2})
	if err := Render(&buf, FormatJSON, env); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["command"] != "symbols" {
		t.Errorf("command = %v, want symbols", decoded["command"])
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("JSON output should end with a newline")
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatYAML, map[string]int{"functions": 2}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var decoded map[string]int
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded["functions"] != 2 {
		t.Errorf("functions = %d, want 2", decoded["functions"])
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	listing := fakeListing{rows: [][]string{{"helper", "declaration"}, {"limit", "const"}}}
	if err := Render(&buf, FormatTable, listing); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "helper", "limit"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableUnwrapsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	env := NewEnvelope("symbols", fakeListing{rows: [][]string{{"helper", "declaration"}}})
	if err := Render(&buf, FormatTable, env); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), "helper") {
		t.Errorf("envelope data not rendered: %s", buf.String())
	}
}

func TestRenderTableRequiresTabler(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTable, map[string]int{"n": 1}); err == nil {
		t.Error("non-tabular payload should fail table rendering")
	}
}

func TestSortWarnings(t *testing.T) {
	warnings := []Warning{
		{Severity: "info", Text: "b"},
		{Severity: "error", Text: "a"},
		{Severity: "warning", Text: "c"},
		{Severity: "info", Text: "a"},
	}
	SortWarnings(warnings)

	got := make([]string, len(warnings))
	for i, w := range warnings {
		got[i] = w.Severity + ":" + w.Text
	}
	want := []string{"error:a", "warning:c", "info:a", "info:b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
