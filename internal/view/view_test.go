package view

import (
	"context"
	"strings"
	"testing"

	"scalpel/internal/extract"
	"scalpel/internal/parser"
	"scalpel/internal/selector"
)

func resolve(t *testing.T, path, source, sel string) (*parser.Result, *extract.FileEntities, *selector.Entity) {
	t.Helper()
	res, err := parser.Parse(context.Background(), path, []byte(source), parser.LangJavaScript)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	t.Cleanup(res.Close)

	fe, err := extract.File(res)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	parsed, err := selector.Parse(sel)
	if err != nil {
		t.Fatalf("selector.Parse(%q) error = %v", sel, err)
	}
	matches, err := selector.Resolve([]*extract.FileEntities{fe}, parsed, selector.Options{})
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", sel, err)
	}
	return res, fe, &matches[0].Entity
}

func TestBuildContextExact(t *testing.T) {
	header := strings.Repeat("// filler\n", 20)
	src := header + "function pick() { return 1; }\n" + header
	res, _, ent := resolve(t, "ctx.js", src, "pick")

	c, err := BuildContext(res.Source, ent, ContextOptions{Before: 10, After: 10, Mode: ModeExact})
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if !c.Window.ContainsSpan(c.Target) {
		t.Error("window must contain the target span")
	}
	if got := c.Window.Len(); got != ent.Span().Len()+20 {
		t.Errorf("window length = %d, want target+20", got)
	}
	if c.Clipped {
		t.Error("padding fits the buffer; clipped should be false")
	}
}

func TestBuildContextClipsAtBounds(t *testing.T) {
	src := "function tiny() {}\n"
	res, _, ent := resolve(t, "ctx.js", src, "tiny")

	c, err := BuildContext(res.Source, ent, ContextOptions{Before: -1, After: -1})
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if c.Window.Start != 0 || int(c.Window.End) != len(src) {
		t.Errorf("window = %v, want the whole buffer", c.Window)
	}
	if !c.Clipped {
		t.Error("default padding exceeds the buffer; clipped should be true")
	}
	if c.Text != src {
		t.Errorf("text = %q, want the full source", c.Text)
	}
}

func TestBuildContextEnclosingClass(t *testing.T) {
	src := `class Vault {
  open() { return 1; }
}
`
	res, _, ent := resolve(t, "ctx.js", src, "Vault#open")

	c, err := BuildContext(res.Source, ent, ContextOptions{Mode: ModeClass})
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if c.Mode != ModeClass || c.FrameName != "Vault" {
		t.Errorf("mode/frame = %v/%q, want class/Vault", c.Mode, c.FrameName)
	}
	if !strings.Contains(c.Text, "class Vault") {
		t.Errorf("text should include the class frame, got %q", c.Text)
	}
}

func TestBuildContextEnclosingFallback(t *testing.T) {
	src := "function solo() {}\n"
	res, _, ent := resolve(t, "ctx.js", src, "solo")

	c, err := BuildContext(res.Source, ent, ContextOptions{Mode: ModeClass})
	if err != nil {
		t.Fatalf("BuildContext() error = %v", err)
	}
	if c.Mode != ModeExact {
		t.Errorf("mode = %v, want fallback to exact when no class frame exists", c.Mode)
	}
}

const sliceSource = `import { readFile } from "fs";

const LIMIT = 42;
const UNUSED = "nope";

function helper(x) { return x + LIMIT; }

function lonely() { return 0; }

function main(input) {
  const local = readFile(input);
  return helper(local);
}
`

func TestBuildSlice(t *testing.T) {
	res, fe, ent := resolve(t, "slice.js", sliceSource, "main")

	s, err := BuildSlice(res, fe, ent)
	if err != nil {
		t.Fatalf("BuildSlice() error = %v", err)
	}

	kinds := map[string]PieceKind{}
	for _, p := range s.Pieces {
		kinds[p.Name] = p.Kind
	}

	if kinds["LIMIT"] != "" {
		t.Error("LIMIT is used only by helper, not by main; single-level slices must not include it")
	}
	if kinds["helper"] != PieceFunction {
		t.Errorf("helper piece = %q, want function", kinds["helper"])
	}
	if kinds["lonely"] != "" {
		t.Error("lonely is not referenced and must not appear")
	}
	if kinds["UNUSED"] != "" {
		t.Error("UNUSED constant must not appear")
	}
	if kinds["main"] != PieceTarget {
		t.Errorf("target piece missing: %v", kinds)
	}

	foundImport := false
	for _, p := range s.Pieces {
		if p.Kind == PieceImport && strings.Contains(p.Text, "readFile") {
			foundImport = true
		}
	}
	if !foundImport {
		t.Error("slice should include the fs import that binds readFile")
	}

	if s.SliceBytes >= s.OriginalBytes {
		t.Errorf("slice (%d bytes) should be smaller than the file (%d bytes)", s.SliceBytes, s.OriginalBytes)
	}
	if s.OriginalLines != strings.Count(sliceSource, "\n") {
		t.Errorf("originalLines = %d, want %d", s.OriginalLines, strings.Count(sliceSource, "\n"))
	}
	if s.SliceLines <= 0 || s.SliceLines >= s.OriginalLines {
		t.Errorf("sliceLines = %d, want between 1 and %d", s.SliceLines, s.OriginalLines-1)
	}
	want := 100 * (1 - float64(s.SliceLines)/float64(s.OriginalLines))
	if s.ReductionPct != want {
		t.Errorf("reduction = %f, want the line ratio %f", s.ReductionPct, want)
	}

	// Pieces come out in source order.
	for i := 1; i < len(s.Pieces); i++ {
		if s.Pieces[i].Span.Start < s.Pieces[i-1].Span.Start {
			t.Fatalf("pieces out of source order: %v", s.Pieces)
		}
	}
}

func TestBuildSliceConstantReference(t *testing.T) {
	src := "const RATE = 2;\nfunction scale(n) { return n * RATE; }\n"
	res, fe, ent := resolve(t, "c.js", src, "scale")

	s, err := BuildSlice(res, fe, ent)
	if err != nil {
		t.Fatalf("BuildSlice() error = %v", err)
	}
	found := false
	for _, p := range s.Pieces {
		if p.Kind == PieceConstant && p.Name == "RATE" {
			found = true
		}
	}
	if !found {
		t.Errorf("RATE constant missing from slice: %+v", s.Pieces)
	}
	if len(s.FreeIdentifiers) == 0 {
		t.Error("free identifier set should not be empty")
	}
}

func TestBuildSliceLocalsAreNotFree(t *testing.T) {
	src := "function f(a) { const b = 1; return a + b; }\n"
	res, fe, ent := resolve(t, "l.js", src, "f")

	s, err := BuildSlice(res, fe, ent)
	if err != nil {
		t.Fatalf("BuildSlice() error = %v", err)
	}
	for _, id := range s.FreeIdentifiers {
		if id == "a" || id == "b" {
			t.Errorf("locally bound %q reported as free", id)
		}
	}
}
