package extract

import (
	sitter "github.com/smacker/go-tree-sitter"

	"scalpel/internal/parser"
	"scalpel/internal/span"
)

// walkContext is the extraction state threaded through the recursive walk.
// It is passed by value and never mutated in place, so sibling branches of
// the walk cannot observe each other's state.
type walkContext struct {
	scope     []string
	export    ExportKind
	enclosing []EnclosingContext
	className string
}

func (c walkContext) withScope(name string) walkContext {
	out := c
	out.scope = append(append([]string{}, c.scope...), name)
	return out
}

func (c walkContext) withExport(k ExportKind) walkContext {
	out := c
	out.export = k
	return out
}

func (c walkContext) withEnclosing(ec EnclosingContext) walkContext {
	out := c
	out.enclosing = append(append([]EnclosingContext{}, c.enclosing...), ec)
	return out
}

func (c walkContext) cleared() walkContext {
	out := c
	out.export = ExportNone
	out.className = ""
	return out
}

type extractor struct {
	src           []byte
	funcs         []FunctionRecord
	vars          []VariableRecord
	namedExports  map[string]bool
	defaultExport string
}

// File extracts all function and variable records from a parsed source file.
// Records appear in source order.
func File(res *parser.Result) (*FileEntities, error) {
	e := &extractor{
		src:          res.Source,
		namedExports: make(map[string]bool),
	}
	e.walk(res.Root(), walkContext{export: ExportNone})
	e.applyExportClauses()

	return &FileEntities{
		Path:       res.Path,
		Language:   res.Language,
		SourceHash: Digest(res.Source),
		Functions:  e.funcs,
		Variables:  e.vars,
	}, nil
}

func (e *extractor) text(n *sitter.Node) string {
	return string(e.src[n.StartByte():n.EndByte()])
}

func (e *extractor) walk(node *sitter.Node, ctx walkContext) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "program":
		e.walkChildren(node, ctx)

	case "export_statement":
		e.handleExport(node, ctx)

	case "function_declaration", "generator_function_declaration":
		e.handleFunctionDeclaration(node, ctx)

	case "class_declaration", "class":
		e.handleClass(node, ctx)

	case "lexical_declaration", "variable_declaration":
		e.handleVarDeclaration(node, ctx)

	case "expression_statement":
		e.handleExpressionStatement(node, ctx)

	default:
		e.walkChildren(node, ctx.cleared())
	}
}

func (e *extractor) walkChildren(node *sitter.Node, ctx walkContext) {
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), ctx)
	}
}

// fnParams collects everything addFunction needs to build one record.
type fnParams struct {
	node      *sitter.Node // the node whose text is hashed and replaced
	sigNode   *sitter.Node // the node addressed by the path signature
	name      string
	canonical string
	kind      Kind
	export    ExportKind
	idSpan    *span.Span
	scope     []string
	enclosing []EnclosingContext
}

func (e *extractor) addFunction(p fnParams) {
	if p.sigNode == nil {
		p.sigNode = p.node
	}
	sp := span.FromNode(p.node)
	text := sp.Text(e.src)
	long := Digest(text)

	e.funcs = append(e.funcs, FunctionRecord{
		Name:              p.name,
		CanonicalName:     p.canonical,
		ScopeChain:        p.scope,
		Kind:              p.kind,
		ExportKind:        p.export,
		Replaceable:       p.name != AnonymousName,
		Span:              sp,
		IdentifierSpan:    p.idSpan,
		Hash:              long,
		ShortHash:         long[:ShortHashLen],
		PathSignature:     PathSignature(p.sigNode, e.src),
		EnclosingContexts: p.enclosing,
		Line:              int(p.node.StartPoint().Row) + 1,
		Column:            int(p.node.StartPoint().Column) + 1,
	})
}

func (e *extractor) handleFunctionDeclaration(node *sitter.Node, ctx walkContext) {
	name := AnonymousName
	var idSpan *span.Span
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = e.text(nameNode)
		s := span.FromNode(nameNode)
		idSpan = &s
	} else if ctx.export == ExportDefault {
		name = DefaultExportName
	}

	e.addFunction(fnParams{
		node:      node,
		name:      name,
		canonical: name,
		kind:      KindDeclaration,
		export:    ctx.export,
		idSpan:    idSpan,
		scope:     ctx.withScope(name).scope,
		enclosing: ctx.enclosing,
	})

	e.walkFunctionBody(node, ctx, name)
}

// walkFunctionBody descends into a function-like node's body looking for
// nested records, with the export context cleared and this function pushed
// onto the scope chain and enclosing-context stack.
func (e *extractor) walkFunctionBody(fnNode *sitter.Node, ctx walkContext, name string) {
	body := fnNode.ChildByFieldName("body")
	if body == nil {
		return
	}
	bodyCtx := ctx.cleared().withScope(name).withEnclosing(EnclosingContext{
		Kind: "function",
		Name: name,
		Span: span.FromNode(fnNode),
	})
	e.walkChildren(body, bodyCtx)
}

func (e *extractor) handleClass(node *sitter.Node, ctx walkContext) {
	name := AnonymousName
	var idSpan *span.Span
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = e.text(nameNode)
		s := span.FromNode(nameNode)
		idSpan = &s
	} else if ctx.export == ExportDefault {
		name = DefaultExportName
	}

	e.addFunction(fnParams{
		node:      node,
		name:      name,
		canonical: name,
		kind:      KindClass,
		export:    ctx.export,
		idSpan:    idSpan,
		scope:     ctx.withScope(name).scope,
		enclosing: ctx.enclosing,
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	bodyCtx := ctx.cleared().withScope(name).withEnclosing(EnclosingContext{
		Kind: "class",
		Name: name,
		Span: span.FromNode(node),
	})
	bodyCtx.className = name

	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Type() {
		case "method_definition":
			e.handleMethod(member, bodyCtx)
		case "field_definition", "public_field_definition":
			e.handleClassField(member, bodyCtx)
		}
	}
}

func (e *extractor) handleMethod(node *sitter.Node, ctx walkContext) {
	var isStatic, isGetter, isSetter bool
	for i := 0; i < int(node.ChildCount()); i++ {
		switch node.Child(i).Type() {
		case "static":
			isStatic = true
		case "get":
			isGetter = true
		case "set":
			isSetter = true
		}
	}

	name := AnonymousName
	var idSpan *span.Span
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		name = e.text(nameNode)
		s := span.FromNode(nameNode)
		idSpan = &s
	}

	e.addFunction(fnParams{
		node:      node,
		name:      name,
		canonical: methodCanonical(ctx.className, name, isStatic, isGetter, isSetter),
		kind:      KindClassMethod,
		export:    ctx.export,
		idSpan:    idSpan,
		scope:     ctx.withScope(name).scope,
		enclosing: ctx.enclosing,
	})

	e.walkFunctionBody(node, ctx, name)
}

func (e *extractor) handleClassField(node *sitter.Node, ctx walkContext) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.ChildByFieldName("property")
	}
	if nameNode == nil {
		return
	}
	name := e.text(nameNode)
	idSp := span.FromNode(nameNode)
	value := node.ChildByFieldName("value")

	if value != nil && isFunctionNode(value.Type()) {
		// Function-valued field: addressable like a method.
		e.addFunction(fnParams{
			node:      node,
			name:      name,
			canonical: methodCanonical(ctx.className, name, false, false, false),
			kind:      KindClassMethod,
			export:    ctx.export,
			idSpan:    &idSp,
			scope:     ctx.withScope(name).scope,
			enclosing: ctx.enclosing,
		})
		e.walkFunctionBody(value, ctx, name)
		return
	}

	initType := ""
	if value != nil {
		initType = value.Type()
	}
	sp := span.FromNode(node)
	long := Digest(sp.Text(e.src))
	e.vars = append(e.vars, VariableRecord{
		Name:              name,
		CanonicalName:     methodCanonical(ctx.className, name, false, false, false),
		ScopeChain:        ctx.withScope(name).scope,
		BindingKind:       BindingClassField,
		InitializerType:   initType,
		ExportKind:        ctx.export,
		Replaceable:       true,
		Span:              sp,
		DeclaratorSpan:    sp,
		BindingSpan:       idSp,
		IdentifierSpan:    &idSp,
		Hash:              long,
		ShortHash:         long[:ShortHashLen],
		PathSignature:     PathSignature(node, e.src),
		EnclosingContexts: ctx.enclosing,
		Line:              int(node.StartPoint().Row) + 1,
		Column:            int(node.StartPoint().Column) + 1,
	})
}

func bindingKindOf(node *sitter.Node, src []byte) BindingKind {
	if node.Type() == "variable_declaration" {
		return BindingVar
	}
	// lexical_declaration starts with a `let` or `const` keyword token.
	if node.ChildCount() > 0 {
		switch string(src[node.Child(0).StartByte():node.Child(0).EndByte()]) {
		case "const":
			return BindingConst
		case "let":
			return BindingLet
		}
	}
	return BindingLet
}

func isFunctionNode(nodeType string) bool {
	switch nodeType {
	case "arrow_function", "function_expression", "function", "generator_function", "class":
		return true
	}
	return false
}

func functionKindOf(nodeType string) Kind {
	switch nodeType {
	case "arrow_function":
		return KindArrow
	case "class":
		return KindClass
	default:
		return KindExpression
	}
}

func (e *extractor) handleVarDeclaration(node *sitter.Node, ctx walkContext) {
	bk := bindingKindOf(node, e.src)

	for i := 0; i < int(node.ChildCount()); i++ {
		decl := node.Child(i)
		if decl == nil || decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		value := decl.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}

		if nameNode.Type() != "identifier" {
			// Destructuring pattern: one record per bound identifier.
			e.addPatternBindings(node, decl, nameNode, bk, ctx)
			if value != nil {
				e.walk(value, ctx.cleared())
			}
			continue
		}

		name := e.text(nameNode)
		idSp := span.FromNode(nameNode)

		if value != nil && isFunctionNode(value.Type()) {
			e.addFunction(fnParams{
				node:      value,
				sigNode:   decl,
				name:      name,
				canonical: name,
				kind:      functionKindOf(value.Type()),
				export:    ctx.export,
				idSpan:    &idSp,
				scope:     ctx.withScope(name).scope,
				enclosing: ctx.enclosing,
			})
			if value.Type() == "class" {
				e.handleClassMembers(value, ctx, name)
			} else {
				e.walkFunctionBody(value, ctx, name)
			}
			continue
		}

		initType := ""
		if value != nil {
			initType = value.Type()
		}
		e.addVariable(varParams{
			stmtNode:   node,
			declNode:   decl,
			nameNode:   nameNode,
			name:       name,
			canonical:  name,
			binding:    bk,
			initType:   initType,
			export:     ctx.export,
			ctx:        ctx,
		})
		if value != nil {
			e.walk(value, ctx.cleared())
		}
	}
}

// handleClassMembers extracts members of a class expression bound to a name,
// e.g. `const A = class { m() {} }`.
func (e *extractor) handleClassMembers(classNode *sitter.Node, ctx walkContext, name string) {
	body := classNode.ChildByFieldName("body")
	if body == nil {
		return
	}
	bodyCtx := ctx.cleared().withScope(name).withEnclosing(EnclosingContext{
		Kind: "class",
		Name: name,
		Span: span.FromNode(classNode),
	})
	bodyCtx.className = name
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(i)
		if member == nil {
			continue
		}
		switch member.Type() {
		case "method_definition":
			e.handleMethod(member, bodyCtx)
		case "field_definition", "public_field_definition":
			e.handleClassField(member, bodyCtx)
		}
	}
}

type varParams struct {
	stmtNode  *sitter.Node
	declNode  *sitter.Node
	nameNode  *sitter.Node
	name      string
	canonical string
	binding   BindingKind
	initType  string
	export    ExportKind
	ctx       walkContext
}

func (e *extractor) addVariable(p varParams) {
	full := span.FromNode(p.stmtNode)
	long := Digest(full.Text(e.src))
	idSp := span.FromNode(p.nameNode)

	e.vars = append(e.vars, VariableRecord{
		Name:              p.name,
		CanonicalName:     p.canonical,
		ScopeChain:        p.ctx.withScope(p.name).scope,
		BindingKind:       p.binding,
		InitializerType:   p.initType,
		ExportKind:        p.export,
		Replaceable:       true,
		Span:              full,
		DeclaratorSpan:    span.FromNode(p.declNode),
		BindingSpan:       idSp,
		IdentifierSpan:    &idSp,
		Hash:              long,
		ShortHash:         long[:ShortHashLen],
		PathSignature:     PathSignature(p.declNode, e.src),
		EnclosingContexts: p.ctx.enclosing,
		Line:              int(p.declNode.StartPoint().Row) + 1,
		Column:            int(p.declNode.StartPoint().Column) + 1,
	})
}

// addPatternBindings emits one variable record per identifier bound by a
// destructuring pattern (`const {a, b} = ...`, `const [x] = ...`).
func (e *extractor) addPatternBindings(stmtNode, declNode, pattern *sitter.Node, bk BindingKind, ctx walkContext) {
	var walkPattern func(n *sitter.Node)
	walkPattern = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "identifier", "shorthand_property_identifier_pattern":
			e.addVariable(varParams{
				stmtNode:  stmtNode,
				declNode:  declNode,
				nameNode:  n,
				name:      e.text(n),
				canonical: e.text(n),
				binding:   bk,
				initType:  "pattern",
				export:    ctx.export,
				ctx:       ctx,
			})
			return
		case "pair_pattern":
			// { exported: local } binds only the value side.
			walkPattern(n.ChildByFieldName("value"))
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walkPattern(n.Child(i))
		}
	}
	walkPattern(pattern)
}
