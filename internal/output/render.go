package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"scalpel/internal/errors"
)

// Format selects how a response is rendered.
type Format string

const (
	// FormatJSON renders indented deterministic JSON
	FormatJSON Format = "json"
	// FormatYAML renders YAML
	FormatYAML Format = "yaml"
	// FormatTable renders a plain-text table; the payload must implement Tabler
	FormatTable Format = "table"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML, FormatTable:
		return Format(s), nil
	}
	return "", errors.Newf(errors.InvalidParameter,
		"unknown output format %q (expected json, yaml, or table)", s)
}

// Tabler is implemented by payloads that have a tabular rendering.
type Tabler interface {
	TableHeader() []string
	TableRows() [][]string
}

// Render writes v to w in the requested format. Table rendering unwraps an
// Envelope and renders its Data; JSON and YAML render the value as given.
func Render(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON, "":
		data, err := DeterministicEncodeIndented(v, "  ")
		if err != nil {
			return errors.New(errors.InternalError, "cannot encode response", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err

	case FormatYAML:
		data, err := yaml.Marshal(normalizeValue(v))
		if err != nil {
			return errors.New(errors.InternalError, "cannot encode response", err)
		}
		_, err = w.Write(data)
		return err

	case FormatTable:
		payload := v
		if env, ok := v.(*Envelope); ok {
			payload = env.Data
		}
		tab, ok := payload.(Tabler)
		if !ok {
			return errors.Newf(errors.InvalidParameter,
				"this command has no table rendering; use json or yaml")
		}
		return renderTable(w, tab)
	}

	return errors.Newf(errors.InvalidParameter, "unknown output format %q", format)
}

func renderTable(w io.Writer, tab Tabler) error {
	t := tablewriter.NewWriter(w)
	t.SetHeader(tab.TableHeader())
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	t.SetColumnSeparator("  ")
	t.SetHeaderLine(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range tab.TableRows() {
		t.Append(row)
	}
	t.Render()
	return nil
}
