// Package selector resolves entity selectors against extracted file records.
// A selector is a typed base name plus zero or more filter predicates:
//
//	function:Account#deposit
//	variable:config@kind:const
//	handleRequest@range:100-2400@export:named
//	hash:3f9a1c22d0e45b77
//	path:class[Account]/method[deposit]
//
// A plain base matches canonical names, scope aliases, content hashes, path
// signatures, or bare names, in that strict priority order; the hash: and
// path: forms pin the base to a single identity form. Filters are AND-ed.
// Resolution fails closed: zero survivors is NO_MATCH, multiple survivors
// without a disambiguator is AMBIGUOUS_MATCH.
package selector

import (
	"strings"

	"scalpel/internal/errors"
)

// Type restricts which record family a selector addresses.
type Type string

const (
	TypeAny      Type = ""
	TypeFunction Type = "function"
	TypeVariable Type = "variable"
)

// MatchKind records how a candidate matched the selector base. Smaller is
// stronger; resolution keeps only the strongest kind present.
type MatchKind int

const (
	MatchCanonicalName MatchKind = iota
	MatchScopeAlias
	MatchHash
	MatchPathSignature
	MatchBareName
)

func (k MatchKind) String() string {
	switch k {
	case MatchCanonicalName:
		return "canonical-name"
	case MatchScopeAlias:
		return "scope-alias"
	case MatchHash:
		return "hash"
	case MatchPathSignature:
		return "path-signature"
	case MatchBareName:
		return "bare-name"
	default:
		return "unknown"
	}
}

// BaseKind says which identity forms the base is matched against.
type BaseKind int

const (
	BaseAuto BaseKind = iota // every form, strongest match kind wins
	BaseHash                 // hash:<digest>, content hashes only
	BasePath                 // path:<signature>, path signatures only
)

// Filter is one parsed @key:value predicate.
type Filter struct {
	Key   string
	Value string
}

// Selector is one parsed selector expression. Base is stored with its
// hash:/path: prefix already stripped; BaseKind records which form it was.
type Selector struct {
	Raw      string
	Type     Type
	Base     string
	BaseKind BaseKind
	Filters  []Filter
}

// Parse splits a raw selector into type prefix, base, and filters.
func Parse(raw string) (*Selector, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Newf(errors.InvalidParameter, "empty selector")
	}

	sel := &Selector{Raw: raw, Type: TypeAny}

	rest := raw
	switch {
	case strings.HasPrefix(rest, "function:"):
		sel.Type = TypeFunction
		rest = rest[len("function:"):]
	case strings.HasPrefix(rest, "variable:"):
		sel.Type = TypeVariable
		rest = rest[len("variable:"):]
	}

	parts := strings.Split(rest, "@")
	sel.Base = strings.TrimSpace(parts[0])

	switch {
	case strings.HasPrefix(sel.Base, "hash:"):
		sel.BaseKind = BaseHash
		sel.Base = strings.TrimSpace(sel.Base[len("hash:"):])
	case strings.HasPrefix(sel.Base, "path:"):
		sel.BaseKind = BasePath
		sel.Base = strings.TrimSpace(sel.Base[len("path:"):])
	}
	if sel.Base == "" {
		return nil, errors.Newf(errors.InvalidParameter, "selector %q has no base name", raw)
	}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, ":")
		if !found || key == "" {
			return nil, errors.Newf(errors.InvalidParameter, "malformed filter %q in selector %q", "@"+part, raw)
		}
		key = strings.TrimSpace(key)
		if !validFilterKey(key) {
			return nil, errors.Newf(errors.InvalidParameter, "unknown filter %q in selector %q", key, raw)
		}
		sel.Filters = append(sel.Filters, Filter{Key: key, Value: strings.TrimSpace(value)})
	}
	return sel, nil
}

func validFilterKey(key string) bool {
	switch key {
	case "range", "bytes", "kind", "export", "hash", "path", "replaceable":
		return true
	}
	return false
}
