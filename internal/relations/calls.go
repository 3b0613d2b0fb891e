package relations

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"scalpel/internal/extract"
	"scalpel/internal/span"
)

// CallSite is one function invocation. Callee attribution is by name, not
// binding: a local shadowing the name is attributed to it anyway.
type CallSite struct {
	File   string    `json:"file"`
	Caller string    `json:"caller"` // canonical name of the enclosing function, "" at module level
	Callee string    `json:"callee"` // identifier or dotted member path as written
	Span   span.Span `json:"span"`
	Line   int       `json:"line"`
}

// callSites collects every call expression in the file and attributes each to
// the innermost function record whose span contains it.
func callSites(f *File) []CallSite {
	src := f.Res.Source
	var sites []CallSite

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if callee := calleeName(n, src); callee != "" && callee != "require" {
				sp := span.FromNode(n)
				sites = append(sites, CallSite{
					File:   f.Res.Path,
					Caller: enclosingFunction(f.Entities, sp),
					Callee: callee,
					Span:   sp,
					Line:   int(n.StartPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(f.Res.Root())
	return sites
}

// calleeName renders the called expression as a dotted path; computed or
// parenthesized callees yield "".
func calleeName(call *sitter.Node, src []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return string(src[fn.StartByte():fn.EndByte()])
	case "member_expression":
		text := string(src[fn.StartByte():fn.EndByte()])
		if strings.ContainsAny(text, "[(\n") {
			return ""
		}
		return text
	}
	return ""
}

// enclosingFunction returns the canonical name of the innermost function
// record containing sp, or "" for module-level calls.
func enclosingFunction(fe *extract.FileEntities, sp span.Span) string {
	best := ""
	bestLen := ^uint32(0)
	for i := range fe.Functions {
		f := &fe.Functions[i]
		if f.Kind == extract.KindClass {
			continue
		}
		if f.Span.ContainsSpan(sp) && f.Span.Len() < bestLen {
			best = f.CanonicalName
			bestLen = f.Span.Len()
		}
	}
	return best
}

// CallsTo lists call sites whose callee matches name. A dotted callee
// matches on its full text or its final segment, so both `helper()` and
// `utils.helper()` answer to "helper".
func (ix *Index) CallsTo(name string) []CallSite {
	var out []CallSite
	for _, c := range ix.Calls {
		if c.Callee == name || lastSegment(c.Callee) == name {
			out = append(out, c)
		}
	}
	return out
}

// CallsFrom lists call sites made inside the function with the given
// canonical name.
func (ix *Index) CallsFrom(caller string) []CallSite {
	var out []CallSite
	for _, c := range ix.Calls {
		if c.Caller == caller {
			out = append(out, c)
		}
	}
	return out
}

func lastSegment(callee string) string {
	if i := strings.LastIndex(callee, "."); i >= 0 {
		return callee[i+1:]
	}
	return callee
}
