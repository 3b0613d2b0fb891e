package extract

import (
	sitter "github.com/smacker/go-tree-sitter"
	"scalpel/internal/span"
)

// handleExport processes one `export ...` statement. Declarations carried by
// the statement are walked with the export kind set; bare export clauses and
// `export default <identifier>` only record names for the post-pass, because
// the record they refer to may not have been extracted yet.
func (e *extractor) handleExport(node *sitter.Node, ctx walkContext) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	kind := ExportNamed
	if isDefault {
		kind = ExportDefault
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "function_declaration", "generator_function_declaration",
			"class_declaration", "lexical_declaration", "variable_declaration":
			e.walk(child, ctx.withExport(kind))

		case "export_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				if local := spec.ChildByFieldName("name"); local != nil {
					e.namedExports[e.text(local)] = true
				}
			}

		case "identifier":
			if isDefault {
				e.defaultExport = e.text(child)
			}

		case "arrow_function", "function_expression", "function", "class":
			if !isDefault {
				continue
			}
			// export default (anonymous) expression
			name := DefaultExportName
			var idSpan *span.Span
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				name = e.text(nameNode)
				s := span.FromNode(nameNode)
				idSpan = &s
			}
			e.addFunction(fnParams{
				node:      child,
				name:      name,
				canonical: name,
				kind:      functionKindOf(child.Type()),
				export:    ExportDefault,
				idSpan:    idSpan,
				scope:     ctx.withScope(name).scope,
				enclosing: ctx.enclosing,
			})
			if child.Type() == "class" {
				e.handleClassMembers(child, ctx, name)
			} else {
				e.walkFunctionBody(child, ctx, name)
			}
		}
	}
}

// applyExportClauses resolves `export { name }` clauses and
// `export default name` statements against already-extracted top-level
// records. Runs once after the walk.
func (e *extractor) applyExportClauses() {
	if len(e.namedExports) == 0 && e.defaultExport == "" {
		return
	}
	for i := range e.funcs {
		f := &e.funcs[i]
		if f.ExportKind != ExportNone || len(f.ScopeChain) != 1 {
			continue
		}
		if e.namedExports[f.Name] {
			f.ExportKind = ExportNamed
		} else if f.Name == e.defaultExport {
			f.ExportKind = ExportDefault
		}
	}
	for i := range e.vars {
		v := &e.vars[i]
		if v.ExportKind != ExportNone || len(v.ScopeChain) != 1 {
			continue
		}
		if e.namedExports[v.Name] {
			v.ExportKind = ExportNamed
		} else if v.Name == e.defaultExport {
			v.ExportKind = ExportDefault
		}
	}
}
