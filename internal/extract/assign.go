package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"scalpel/internal/span"
)

func (e *extractor) handleExpressionStatement(node *sitter.Node, ctx walkContext) {
	handled := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "assignment_expression" {
			e.handleAssignment(node, child, ctx)
			handled = true
		}
	}
	if !handled {
		// IIFEs and call arguments may carry nested functions.
		e.walkChildren(node, ctx.cleared())
	}
}

// handleAssignment classifies one top-level-ish assignment expression:
// CommonJS export forms, prototype method attachments, and plain identifier
// assignments with function values.
func (e *extractor) handleAssignment(stmt, assign *sitter.Node, ctx walkContext) {
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}
	lhs := e.text(left)

	switch {
	case lhs == "module.exports":
		e.emitAssignedRecord(stmt, assign, left, right, ctx, assignTarget{
			name:      "module.exports",
			canonical: "module.exports",
			export:    ExportCommonJSDefault,
		})

	case strings.HasPrefix(lhs, "module.exports.") || strings.HasPrefix(lhs, "exports."):
		name := lhs[strings.LastIndex(lhs, ".")+1:]
		e.emitAssignedRecord(stmt, assign, left, right, ctx, assignTarget{
			name:      name,
			canonical: commonJSCanonical(lhs),
			export:    ExportCommonJSNamed,
			idNode:    left.ChildByFieldName("property"),
		})

	case strings.Contains(lhs, ".prototype."):
		idx := strings.Index(lhs, ".prototype.")
		owner := lhs[:idx]
		name := lhs[idx+len(".prototype."):]
		if strings.Contains(name, ".") {
			e.walk(right, ctx.cleared())
			return
		}
		e.emitAssignedRecord(stmt, assign, left, right, ctx, assignTarget{
			name:      name,
			canonical: owner + "#" + name,
			export:    ctx.export,
			scope:     []string{owner, name},
			idNode:    left.ChildByFieldName("property"),
			method:    true,
		})

	case left.Type() == "identifier":
		e.emitAssignedRecord(stmt, assign, left, right, ctx, assignTarget{
			name:      lhs,
			canonical: lhs,
			export:    ctx.export,
			idNode:    left,
		})

	default:
		e.walk(right, ctx.cleared())
	}
}

type assignTarget struct {
	name      string
	canonical string
	export    ExportKind
	scope     []string // overrides the context scope chain when set
	idNode    *sitter.Node
	method    bool
}

func (e *extractor) emitAssignedRecord(stmt, assign, left, right *sitter.Node, ctx walkContext, t assignTarget) {
	scope := t.scope
	if scope == nil {
		scope = ctx.withScope(t.name).scope
	}

	var idSpan *span.Span
	if t.idNode != nil {
		s := span.FromNode(t.idNode)
		idSpan = &s
	}

	if isFunctionNode(right.Type()) {
		kind := functionKindOf(right.Type())
		if t.method {
			kind = KindClassMethod
		}
		e.addFunction(fnParams{
			node:      right,
			sigNode:   assign,
			name:      t.name,
			canonical: t.canonical,
			kind:      kind,
			export:    t.export,
			idSpan:    idSpan,
			scope:     scope,
			enclosing: ctx.enclosing,
		})
		if right.Type() == "class" {
			e.handleClassMembers(right, ctx, t.name)
		} else {
			e.walkFunctionBody(right, ctx, t.name)
		}
		return
	}

	full := span.FromNode(stmt)
	long := Digest(full.Text(e.src))
	bindSp := span.FromNode(left)
	e.vars = append(e.vars, VariableRecord{
		Name:              t.name,
		CanonicalName:     t.canonical,
		ScopeChain:        scope,
		BindingKind:       BindingAssignment,
		InitializerType:   right.Type(),
		ExportKind:        t.export,
		Replaceable:       true,
		Span:              full,
		DeclaratorSpan:    span.FromNode(assign),
		BindingSpan:       bindSp,
		IdentifierSpan:    idSpan,
		Hash:              long,
		ShortHash:         long[:ShortHashLen],
		PathSignature:     PathSignature(assign, e.src),
		EnclosingContexts: ctx.enclosing,
		Line:              int(assign.StartPoint().Row) + 1,
		Column:            int(assign.StartPoint().Column) + 1,
	})
	e.walk(right, ctx.cleared())
}
