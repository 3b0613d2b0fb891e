// Package relations builds the cross-file usage indexes: which files import
// which modules, which names each file exports, and which call sites invoke
// which functions. Attribution is structural where the AST shows the form
// directly, with a regex fallback for dynamic CommonJS requires the
// structural pass cannot see; fallback results are flagged approximate.
package relations

import (
	"path"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"scalpel/internal/extract"
	"scalpel/internal/parser"
	"scalpel/internal/span"
)

// ImportKind distinguishes module systems.
type ImportKind string

const (
	ImportESM      ImportKind = "esm"
	ImportCommonJS ImportKind = "commonjs"
)

// Import is one module reference made by a file.
type Import struct {
	File        string     `json:"file"`
	Specifier   string     `json:"specifier"`
	Names       []string   `json:"names,omitempty"`
	Kind        ImportKind `json:"kind"`
	Approximate bool       `json:"approximate,omitempty"`
	Span        span.Span  `json:"span"`
	Line        int        `json:"line"`
}

// Export is one name a file makes visible.
type Export struct {
	File string             `json:"file"`
	Name string             `json:"name"`
	Kind extract.ExportKind `json:"kind"`
	Line int                `json:"line"`
}

// ReExport is an `export ... from "mod"` statement.
type ReExport struct {
	File      string    `json:"file"`
	Specifier string    `json:"specifier"`
	Names     []string  `json:"names,omitempty"`
	Span      span.Span `json:"span"`
}

// File pairs a parse result with its extraction, the unit the index consumes.
type File struct {
	Res      *parser.Result
	Entities *extract.FileEntities
}

// Index is the workspace-wide relationship table set.
type Index struct {
	Imports   map[string][]Import   // keyed by importing file
	Exports   map[string][]Export   // keyed by exporting file
	ReExports map[string][]ReExport // keyed by re-exporting file
	Calls     []CallSite            // every call site in the workspace

	files map[string]bool
}

var requirePattern = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)

// BuildIndex scans every file once and fills all tables.
func BuildIndex(files []*File) *Index {
	ix := &Index{
		Imports:   make(map[string][]Import),
		Exports:   make(map[string][]Export),
		ReExports: make(map[string][]ReExport),
		files:     make(map[string]bool),
	}
	for _, f := range files {
		ix.files[f.Res.Path] = true
	}
	for _, f := range files {
		ix.scanImports(f)
		ix.scanExports(f)
		ix.Calls = append(ix.Calls, callSites(f)...)
	}
	return ix
}

func (ix *Index) scanImports(f *File) {
	src := f.Res.Source
	pathName := f.Res.Path
	root := f.Res.Root()
	structural := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			imp := Import{
				File: pathName,
				Kind: ImportESM,
				Span: span.FromNode(n),
				Line: int(n.StartPoint().Row) + 1,
			}
			if srcNode := n.ChildByFieldName("source"); srcNode != nil {
				imp.Specifier = unquote(string(src[srcNode.StartByte():srcNode.EndByte()]))
			}
			imp.Names = importedNames(n, src)
			ix.Imports[pathName] = append(ix.Imports[pathName], imp)
			structural[imp.Specifier] = true
			return

		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Type() == "identifier" && string(src[fn.StartByte():fn.EndByte()]) == "require" {
				args := n.ChildByFieldName("arguments")
				if args != nil && args.NamedChildCount() == 1 && args.NamedChild(0).Type() == "string" {
					arg := args.NamedChild(0)
					spec := unquote(string(src[arg.StartByte():arg.EndByte()]))
					ix.Imports[pathName] = append(ix.Imports[pathName], Import{
						File:      pathName,
						Specifier: spec,
						Names:     requireBinding(n, src),
						Kind:      ImportCommonJS,
						Span:      span.FromNode(n),
						Line:      int(n.StartPoint().Row) + 1,
					})
					structural[spec] = true
					return
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)

	// Regex fallback: requires hidden from the walk (template concatenation,
	// minified one-liners). Only specifiers the structural pass missed.
	for _, m := range requirePattern.FindAllSubmatchIndex(src, -1) {
		spec := string(src[m[2]:m[3]])
		if structural[spec] {
			continue
		}
		structural[spec] = true
		sp, err := span.New(uint32(m[0]), uint32(m[1]))
		if err != nil {
			continue
		}
		ix.Imports[pathName] = append(ix.Imports[pathName], Import{
			File:        pathName,
			Specifier:   spec,
			Kind:        ImportCommonJS,
			Approximate: true,
			Span:        sp,
			Line:        1 + strings.Count(string(src[:m[0]]), "\n"),
		})
	}
}

func (ix *Index) scanExports(f *File) {
	pathName := f.Res.Path
	for _, fn := range f.Entities.Functions {
		if fn.ExportKind != extract.ExportNone {
			ix.Exports[pathName] = append(ix.Exports[pathName], Export{
				File: pathName, Name: fn.Name, Kind: fn.ExportKind, Line: fn.Line,
			})
		}
	}
	for _, v := range f.Entities.Variables {
		if v.ExportKind != extract.ExportNone {
			ix.Exports[pathName] = append(ix.Exports[pathName], Export{
				File: pathName, Name: v.Name, Kind: v.ExportKind, Line: v.Line,
			})
		}
	}

	src := f.Res.Source
	root := f.Res.Root()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "export_statement" {
			continue
		}
		srcNode := stmt.ChildByFieldName("source")
		if srcNode == nil {
			continue
		}
		re := ReExport{
			File:      pathName,
			Specifier: unquote(string(src[srcNode.StartByte():srcNode.EndByte()])),
			Span:      span.FromNode(stmt),
		}
		for j := 0; j < int(stmt.NamedChildCount()); j++ {
			if clause := stmt.NamedChild(j); clause.Type() == "export_clause" {
				for k := 0; k < int(clause.NamedChildCount()); k++ {
					if spec := clause.NamedChild(k); spec.Type() == "export_specifier" {
						if name := spec.ChildByFieldName("name"); name != nil {
							re.Names = append(re.Names, string(src[name.StartByte():name.EndByte()]))
						}
					}
				}
			}
		}
		ix.ReExports[pathName] = append(ix.ReExports[pathName], re)
	}
}

// ImportersOf lists imports across the workspace that resolve to target,
// a workspace-relative file path.
func (ix *Index) ImportersOf(target string) []Import {
	var out []Import
	for file, imps := range ix.Imports {
		for _, imp := range imps {
			if ix.resolves(file, imp.Specifier, target) {
				out = append(out, imp)
			}
		}
	}
	return out
}

// ReExportersOf lists re-export statements that resolve to target.
func (ix *Index) ReExportersOf(target string) []ReExport {
	var out []ReExport
	for file, res := range ix.ReExports {
		for _, re := range res {
			if ix.resolves(file, re.Specifier, target) {
				out = append(out, re)
			}
		}
	}
	return out
}

// resolves reports whether a specifier written in fromFile refers to target.
// Only relative specifiers resolve; bare package names never match workspace
// files.
func (ix *Index) resolves(fromFile, spec, target string) bool {
	if !strings.HasPrefix(spec, ".") {
		return false
	}
	base := path.Join(path.Dir(fromFile), spec)
	candidates := []string{
		base,
		base + ".js", base + ".mjs", base + ".cjs", base + ".jsx",
		base + ".ts", base + ".mts", base + ".cts", base + ".tsx",
		path.Join(base, "index.js"), path.Join(base, "index.ts"),
	}
	for _, c := range candidates {
		if c == target && ix.files[c] {
			return true
		}
	}
	return false
}

func importedNames(stmt *sitter.Node, src []byte) []string {
	var names []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier":
			names = append(names, string(src[n.StartByte():n.EndByte()]))
			return
		case "string":
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(stmt)
	return names
}

// requireBinding finds the declarator name when the require call is the
// direct initializer: const x = require("m").
func requireBinding(call *sitter.Node, src []byte) []string {
	parent := call.Parent()
	if parent == nil || parent.Type() != "variable_declarator" {
		return nil
	}
	name := parent.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		return nil
	}
	return []string{string(src[name.StartByte():name.EndByte()])}
}

func unquote(s string) string {
	return strings.Trim(s, "'\"`")
}
