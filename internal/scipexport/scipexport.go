// Package scipexport renders extracted entities as a SCIP index so external
// SCIP tooling can consume scalpel's view of a workspace. Only definition
// occurrences are emitted; reference resolution is out of scope here.
package scipexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/version"
)

// ToolName identifies the producer in the index metadata.
const ToolName = "scalpel"

// Build assembles a SCIP index from extracted files. projectRoot is recorded
// as a file:// URI per the SCIP convention.
func Build(files []*extract.FileEntities, projectRoot string) *scippb.Index {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:    ToolName,
				Version: version.Version,
			},
			ProjectRoot:          "file://" + filepath.ToSlash(projectRoot),
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	for _, fe := range files {
		doc := &scippb.Document{
			Language:     string(fe.Language),
			RelativePath: fe.Path,
		}

		for i := range fe.Functions {
			f := &fe.Functions[i]
			if f.Name == extract.AnonymousName {
				continue
			}
			sym := symbolString(fe.Path, f.ScopeChain, true)
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      sym,
				DisplayName: f.CanonicalName,
				Kind:        functionKind(f.Kind),
			})
			doc.Occurrences = append(doc.Occurrences, occurrence(sym, f.Line, f.Column, f.Name))
		}

		for i := range fe.Variables {
			v := &fe.Variables[i]
			sym := symbolString(fe.Path, v.ScopeChain, false)
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      sym,
				DisplayName: v.CanonicalName,
				Kind:        scippb.SymbolInformation_Variable,
			})
			doc.Occurrences = append(doc.Occurrences, occurrence(sym, v.Line, v.Column, v.Name))
		}

		index.Documents = append(index.Documents, doc)
	}
	return index
}

// WriteFile serializes the index as protobuf to path.
func WriteFile(index *scippb.Index, path string) error {
	data, err := proto.Marshal(index)
	if err != nil {
		return errors.New(errors.InternalError, "cannot marshal SCIP index", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.New(errors.InternalError, "cannot create output directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(errors.InternalError, "cannot write SCIP index to "+path, err)
	}
	return nil
}

// symbolString builds a SCIP symbol: scheme, package, then one descriptor
// per scope segment, method-style for the final segment of a function.
func symbolString(path string, scopeChain []string, isFunction bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s . . . `%s`/", ToolName, path)
	for i, seg := range scopeChain {
		last := i == len(scopeChain)-1
		switch {
		case last && isFunction:
			fmt.Fprintf(&b, "%s().", escapeDescriptor(seg))
		case last:
			fmt.Fprintf(&b, "%s.", escapeDescriptor(seg))
		default:
			fmt.Fprintf(&b, "%s#", escapeDescriptor(seg))
		}
	}
	return b.String()
}

func escapeDescriptor(seg string) string {
	if strings.ContainsAny(seg, " .#/()<>") {
		return "`" + seg + "`"
	}
	return seg
}

// occurrence emits the definition occurrence of an identifier. SCIP ranges
// are zero-based [startLine, startChar, endChar] for single-line spans.
func occurrence(symbol string, line, column int, name string) *scippb.Occurrence {
	start := int32(column - 1)
	return &scippb.Occurrence{
		Range:       []int32{int32(line - 1), start, start + int32(len(name))},
		Symbol:      symbol,
		SymbolRoles: int32(scippb.SymbolRole_Definition),
	}
}

func functionKind(k extract.Kind) scippb.SymbolInformation_Kind {
	switch k {
	case extract.KindClass:
		return scippb.SymbolInformation_Class
	case extract.KindClassMethod:
		return scippb.SymbolInformation_Method
	default:
		return scippb.SymbolInformation_Function
	}
}
