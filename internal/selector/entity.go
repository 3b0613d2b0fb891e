package selector

import (
	"scalpel/internal/extract"
	"scalpel/internal/span"
)

// Entity is a uniform view over function and variable records. Exactly one
// of Function or Variable is set.
type Entity struct {
	File     string
	Function *extract.FunctionRecord
	Variable *extract.VariableRecord
}

func (e *Entity) IsFunction() bool { return e.Function != nil }

func (e *Entity) Name() string {
	if e.Function != nil {
		return e.Function.Name
	}
	return e.Variable.Name
}

func (e *Entity) CanonicalName() string {
	if e.Function != nil {
		return e.Function.CanonicalName
	}
	return e.Variable.CanonicalName
}

func (e *Entity) ScopeChain() []string {
	if e.Function != nil {
		return e.Function.ScopeChain
	}
	return e.Variable.ScopeChain
}

func (e *Entity) Aliases() []string {
	if e.Function != nil {
		return e.Function.Aliases()
	}
	return e.Variable.Aliases()
}

func (e *Entity) Span() span.Span {
	if e.Function != nil {
		return e.Function.Span
	}
	return e.Variable.Span
}

func (e *Entity) IdentifierSpan() *span.Span {
	if e.Function != nil {
		return e.Function.IdentifierSpan
	}
	return e.Variable.IdentifierSpan
}

func (e *Entity) Hash() string {
	if e.Function != nil {
		return e.Function.Hash
	}
	return e.Variable.Hash
}

func (e *Entity) ShortHash() string {
	if e.Function != nil {
		return e.Function.ShortHash
	}
	return e.Variable.ShortHash
}

func (e *Entity) PathSignature() string {
	if e.Function != nil {
		return e.Function.PathSignature
	}
	return e.Variable.PathSignature
}

// KindLabel is the record-level kind used by the @kind filter.
func (e *Entity) KindLabel() string {
	if e.Function != nil {
		return string(e.Function.Kind)
	}
	return string(e.Variable.BindingKind)
}

func (e *Entity) ExportKind() extract.ExportKind {
	if e.Function != nil {
		return e.Function.ExportKind
	}
	return e.Variable.ExportKind
}

func (e *Entity) Replaceable() bool {
	if e.Function != nil {
		return e.Function.Replaceable
	}
	return e.Variable.Replaceable
}

func (e *Entity) Line() int {
	if e.Function != nil {
		return e.Function.Line
	}
	return e.Variable.Line
}

func (e *Entity) EnclosingContexts() []extract.EnclosingContext {
	if e.Function != nil {
		return e.Function.EnclosingContexts
	}
	return e.Variable.EnclosingContexts
}

// entities flattens file records into the uniform view, preserving source
// order within each file.
func entities(files []*extract.FileEntities, typ Type) []Entity {
	var out []Entity
	for _, fe := range files {
		if typ != TypeVariable {
			for i := range fe.Functions {
				out = append(out, Entity{File: fe.Path, Function: &fe.Functions[i]})
			}
		}
		if typ != TypeFunction {
			for i := range fe.Variables {
				out = append(out, Entity{File: fe.Path, Variable: &fe.Variables[i]})
			}
		}
	}
	return out
}
