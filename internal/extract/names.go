package extract

import "strings"

// AnonymousName is the synthesized placeholder for anonymous function forms.
const AnonymousName = "<anonymous>"

// DefaultExportName is the synthesized name for anonymous default exports.
const DefaultExportName = "default"

// methodCanonical builds the display name of a class member.
//
//	instance method  -> Owner#m
//	static method    -> Owner.static m
//	getter           -> Owner.get p
//	setter           -> Owner.set p
//
// Selectors additionally accept Owner.m and Owner::m as aliases; those are
// produced by Aliases, not stored as the canonical form.
func methodCanonical(owner, name string, isStatic, isGetter, isSetter bool) string {
	switch {
	case isGetter:
		return owner + ".get " + name
	case isSetter:
		return owner + ".set " + name
	case isStatic:
		return owner + ".static " + name
	case strings.HasPrefix(name, "#"):
		// Private member names already carry the hash sigil.
		return owner + name
	default:
		return owner + "#" + name
	}
}

// commonJSCanonical turns the left-hand side of a CommonJS export assignment
// into its canonical display form. `module.exports` and `module.exports.X`
// pass through unchanged; deeper nesting switches to the `> segment` form:
//
//	exports.a       -> exports.a
//	exports.a.b     -> exports.a > b
//	module.exports.a.b -> module.exports.a > b
func commonJSCanonical(lhs string) string {
	var base string
	var rest string
	switch {
	case lhs == "module.exports":
		return lhs
	case strings.HasPrefix(lhs, "module.exports."):
		rest = lhs[len("module.exports."):]
		base = "module.exports"
	case strings.HasPrefix(lhs, "exports."):
		rest = lhs[len("exports."):]
		base = "exports"
	default:
		return lhs
	}
	parts := strings.Split(rest, ".")
	out := base + "." + parts[0]
	for _, seg := range parts[1:] {
		out += " > " + seg
	}
	return out
}

// Aliases returns every selector-addressable name of a function record, in
// no particular order. The selector engine assigns match-kind priorities.
func (f *FunctionRecord) Aliases() []string {
	aliases := []string{f.Name}
	if f.CanonicalName != f.Name {
		aliases = append(aliases, f.CanonicalName)
	}
	if len(f.ScopeChain) >= 2 {
		owner := f.ScopeChain[len(f.ScopeChain)-2]
		name := f.ScopeChain[len(f.ScopeChain)-1]
		aliases = append(aliases,
			owner+"."+name,
			owner+"#"+name,
			owner+"::"+name,
			strings.Join(f.ScopeChain, " > "),
		)
	}
	return aliases
}

// Aliases returns every selector-addressable name of a variable record.
func (v *VariableRecord) Aliases() []string {
	aliases := []string{v.Name}
	if v.CanonicalName != v.Name {
		aliases = append(aliases, v.CanonicalName)
	}
	if len(v.ScopeChain) >= 2 {
		owner := v.ScopeChain[len(v.ScopeChain)-2]
		name := v.ScopeChain[len(v.ScopeChain)-1]
		aliases = append(aliases,
			owner+"."+name,
			owner+"#"+name,
			owner+"::"+name,
			strings.Join(v.ScopeChain, " > "),
		)
	}
	return aliases
}
