package mutate

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"scalpel/internal/errors"
	"scalpel/internal/parser"
	"scalpel/internal/selector"
	"scalpel/internal/span"
)

// edit is one byte-range substitution. Edits never overlap and are applied
// back to front so earlier offsets stay valid.
type edit struct {
	span span.Span
	text string
}

func (e *Engine) transform(req Request, res *parser.Result, ent *selector.Entity) ([]edit, error) {
	switch req.Operation {
	case OpReplace:
		target := ent.Span()
		if req.ReplaceRange != nil {
			sub, err := resolveSubRange(target, *req.ReplaceRange)
			if err != nil {
				return nil, err
			}
			// An empty replacement is a sub-range deletion.
			return []edit{{span: sub, text: req.Replacement}}, nil
		}
		if req.Replacement == "" {
			return nil, errors.Newf(errors.InvalidParameter, "replace requires a non-empty replacement body")
		}
		return []edit{{span: target, text: req.Replacement}}, nil

	case OpRename:
		if !validIdentifier(req.Replacement) {
			return nil, errors.Newf(errors.InvalidParameter, "%q is not a valid identifier", req.Replacement)
		}
		if req.RenameReferences {
			edits := renameEdits(res, ent, req.Replacement)
			if len(edits) == 0 {
				return nil, errors.Newf(errors.InternalError, "rename found no identifier occurrences")
			}
			return edits, nil
		}
		// Default rename touches only the declaration identifier; bytes
		// outside that sub-span stay as they are.
		ids := ent.IdentifierSpan()
		if ids == nil {
			return nil, errors.Newf(errors.InvalidParameter, "%s has no rename-relevant identifier", ent.CanonicalName())
		}
		return []edit{{span: *ids, text: req.Replacement}}, nil
	}

	return nil, errors.Newf(errors.InvalidParameter, "unknown operation %q", req.Operation)
}

// resolveSubRange maps a target-relative range to absolute file offsets,
// rejecting ranges that reach outside the target span.
func resolveSubRange(target, rel span.Span) (span.Span, error) {
	if rel.End > target.Len() {
		return span.Span{}, errors.Newf(errors.InvalidParameter,
			"replace range %s exceeds the target span (%d bytes)", rel.String(), target.Len())
	}
	return span.New(target.Start+rel.Start, target.Start+rel.End)
}

// renameEdits substitutes the declaration identifier and every same-named
// identifier reference in the file, the opt-in wide form of rename.
// Attribution is textual, not semantic: a shadowing binding of the same name
// is renamed too. Layout is untouched; only identifier tokens change.
func renameEdits(res *parser.Result, ent *selector.Entity, newName string) []edit {
	oldName := ent.Name()

	// Property identifiers are renamed only for member-style entities; a
	// plain function or variable rename must not touch obj.prop names.
	memberStyle := len(ent.ScopeChain()) > 1

	var edits []edit
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		typ := n.Type()
		switch typ {
		case "identifier", "shorthand_property_identifier",
			"shorthand_property_identifier_pattern":
		case "property_identifier", "private_property_identifier":
			if !memberStyle {
				return
			}
		default:
			for i := 0; i < int(n.NamedChildCount()); i++ {
				walk(n.NamedChild(i))
			}
			return
		}
		if string(res.Source[n.StartByte():n.EndByte()]) == oldName {
			edits = append(edits, edit{span: span.FromNode(n), text: newName})
		}
	}
	walk(res.Root())

	sort.Slice(edits, func(i, j int) bool { return edits[i].span.Start < edits[j].span.Start })
	return edits
}

// applyEdits splices edits into a fresh buffer, back to front.
func applyEdits(source []byte, edits []edit) []byte {
	out := make([]byte, len(source))
	copy(out, source)
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		var next []byte
		next = append(next, out[:e.span.Start]...)
		next = append(next, e.text...)
		next = append(next, out[e.span.End:]...)
		out = next
	}
	return out
}

// validIdentifier checks the replacement name against ECMAScript identifier
// shape (ASCII subset plus $ and _; no keyword check).
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		digit := r >= '0' && r <= '9'
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !digit {
			return false
		}
	}
	return true
}
