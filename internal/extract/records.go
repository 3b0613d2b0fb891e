// Package extract walks a parsed source file once and produces the ordered
// entity records every other component works from: functions (declarations,
// expressions, arrows, class methods, classes) and variables (declarators,
// class fields, export assignments). Records are immutable snapshots of one
// parse; after any mutation the whole file is re-extracted.
package extract

import (
	"scalpel/internal/parser"
	"scalpel/internal/span"
)

// Kind classifies a function-like record.
type Kind string

const (
	// KindDeclaration is a function or generator declaration statement
	KindDeclaration Kind = "declaration"
	// KindExpression is a named or assigned function expression
	KindExpression Kind = "expression"
	// KindArrow is an arrow function bound to a declarator or assignment
	KindArrow Kind = "arrow"
	// KindClassMethod is a method, accessor, or function-valued field of a class
	KindClassMethod Kind = "class-method"
	// KindClass is a class declaration or class expression
	KindClass Kind = "class"
)

// ExportKind classifies how (or whether) a record is exported.
type ExportKind string

const (
	// ExportNone marks records that are not exported
	ExportNone ExportKind = "none"
	// ExportNamed marks ESM named exports
	ExportNamed ExportKind = "named"
	// ExportDefault marks ESM default exports
	ExportDefault ExportKind = "default"
	// ExportCommonJSDefault marks `module.exports = ...` assignments
	ExportCommonJSDefault ExportKind = "commonjs-default"
	// ExportCommonJSNamed marks `exports.X` / `module.exports.X` assignments
	ExportCommonJSNamed ExportKind = "commonjs-named"
)

// BindingKind classifies how a variable record is bound.
type BindingKind string

const (
	// BindingVar is a `var` declarator
	BindingVar BindingKind = "var"
	// BindingLet is a `let` declarator
	BindingLet BindingKind = "let"
	// BindingConst is a `const` declarator
	BindingConst BindingKind = "const"
	// BindingClassField is a class field definition
	BindingClassField BindingKind = "class-field"
	// BindingAssignment is a bare or export assignment expression
	BindingAssignment BindingKind = "assignment"
)

// EnclosingContext is one frame of the class/function wrappers around a record.
type EnclosingContext struct {
	Kind string    `json:"kind"` // "class" or "function"
	Name string    `json:"name"`
	Span span.Span `json:"span"`
}

// FunctionRecord identifies one function-like construct.
type FunctionRecord struct {
	Name              string             `json:"name"`
	CanonicalName     string             `json:"canonicalName"`
	ScopeChain        []string           `json:"scopeChain"`
	Kind              Kind               `json:"kind"`
	ExportKind        ExportKind         `json:"exportKind"`
	Replaceable       bool               `json:"replaceable"`
	Span              span.Span          `json:"span"`
	IdentifierSpan    *span.Span         `json:"identifierSpan,omitempty"`
	Hash              string             `json:"hash"`
	ShortHash         string             `json:"shortHash"`
	PathSignature     string             `json:"pathSignature"`
	EnclosingContexts []EnclosingContext `json:"enclosingContexts,omitempty"`
	Line              int                `json:"line"`   // 1-based
	Column            int                `json:"column"` // 1-based
}

// VariableRecord identifies one variable-like construct. Three span variants
// are exposed: the binding identifier alone, the declarator, and the full
// declaration statement; callers pick the one their operation needs.
type VariableRecord struct {
	Name              string             `json:"name"`
	CanonicalName     string             `json:"canonicalName"`
	ScopeChain        []string           `json:"scopeChain"`
	BindingKind       BindingKind        `json:"bindingKind"`
	InitializerType   string             `json:"initializerType,omitempty"`
	ExportKind        ExportKind         `json:"exportKind"`
	Replaceable       bool               `json:"replaceable"`
	Span              span.Span          `json:"span"`           // full declaration
	DeclaratorSpan    span.Span          `json:"declaratorSpan"` // one declarator
	BindingSpan       span.Span          `json:"bindingSpan"`    // identifier only
	IdentifierSpan    *span.Span         `json:"identifierSpan,omitempty"`
	Hash              string             `json:"hash"`
	ShortHash         string             `json:"shortHash"`
	PathSignature     string             `json:"pathSignature"`
	EnclosingContexts []EnclosingContext `json:"enclosingContexts,omitempty"`
	Line              int                `json:"line"`
	Column            int                `json:"column"`
}

// FileEntities is the complete extraction result for one file. Record order
// follows source order.
type FileEntities struct {
	Path       string           `json:"path"`
	Language   parser.Language  `json:"language"`
	SourceHash string           `json:"sourceHash"`
	Functions  []FunctionRecord `json:"functions"`
	Variables  []VariableRecord `json:"variables"`
}

// FunctionByPath returns the function record with the given path signature,
// or nil. Used by the mutation engine's post-guard re-resolution.
func (fe *FileEntities) FunctionByPath(sig string) *FunctionRecord {
	for i := range fe.Functions {
		if fe.Functions[i].PathSignature == sig {
			return &fe.Functions[i]
		}
	}
	return nil
}

// VariableByPath returns the variable record with the given path signature,
// or nil.
func (fe *FileEntities) VariableByPath(sig string) *VariableRecord {
	for i := range fe.Variables {
		if fe.Variables[i].PathSignature == sig {
			return &fe.Variables[i]
		}
	}
	return nil
}
