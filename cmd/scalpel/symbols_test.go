package main

import (
	"testing"

	"scalpel/internal/callgraph"
	"scalpel/internal/relations"
)

func TestCsvSet(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"declaration", []string{"declaration"}},
		{"declaration, arrow ,const", []string{"declaration", "arrow", "const"}},
		{",,", nil},
	}
	for _, tt := range tests {
		got := csvSet(tt.input)
		if tt.want == nil {
			if got != nil {
				t.Errorf("csvSet(%q) = %v, want nil", tt.input, got)
			}
			continue
		}
		if len(got) != len(tt.want) {
			t.Fatalf("csvSet(%q) = %v, want %v", tt.input, got, tt.want)
		}
		for _, w := range tt.want {
			if !got[w] {
				t.Errorf("csvSet(%q) missing %q", tt.input, w)
			}
		}
	}
}

func TestFilterMatch(t *testing.T) {
	if !filterMatch(nil, "anything") {
		t.Error("nil set must match everything")
	}
	set := csvSet("arrow,const")
	if !filterMatch(set, "arrow") || filterMatch(set, "declaration") {
		t.Error("set membership filter misbehaves")
	}
}

func TestSymbolSortCriteria(t *testing.T) {
	if c := symbolSortCriteria("name"); c[0].Field != "CanonicalName" {
		t.Errorf("name sort leads with %q", c[0].Field)
	}
	if c := symbolSortCriteria("line"); c[0].Field != "File" || c[1].Field != "Line" {
		t.Errorf("line sort = %v", c)
	}
	if c := symbolSortCriteria("anything-else"); c[0].Field != "File" {
		t.Errorf("default sort leads with %q", c[0].Field)
	}
}

func TestSymbolListingTable(t *testing.T) {
	l := symbolListing{Symbols: []symbolRow{
		{File: "a.js", CanonicalName: "helper", Type: "function", Kind: "declaration", Export: "named", Line: 3, ShortHash: "abc"},
	}}
	header := l.TableHeader()
	rows := l.TableRows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if len(rows[0]) != len(header) {
		t.Errorf("row width %d != header width %d", len(rows[0]), len(header))
	}
	if rows[0][1] != "helper" || rows[0][5] != "3" {
		t.Errorf("row = %v", rows[0])
	}
}

func TestCallsPayloadTableModuleCaller(t *testing.T) {
	p := callsPayload{Sites: []relations.CallSite{{File: "a.js", Caller: "", Callee: "helper", Line: 9}}}
	rows := p.TableRows()
	if rows[0][1] != "<module>" {
		t.Errorf("module-level caller rendered as %q", rows[0][1])
	}
}

func TestDeadcodePayloadTable(t *testing.T) {
	p := deadcodePayload{Nodes: []*callgraph.Node{
		{File: "a.js", Name: "orphan", Kind: "declaration", Exported: false, Line: 1},
	}}
	rows := p.TableRows()
	if len(rows) != 1 || rows[0][3] != "false" {
		t.Errorf("rows = %v", rows)
	}
}
