package selector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/span"
)

// MaxListedCandidates bounds how many candidates an AMBIGUOUS_MATCH error
// describes.
const MaxListedCandidates = 5

// Match is one resolved candidate.
type Match struct {
	Entity
	MatchKind MatchKind
}

// Options carries the disambiguators and the multi-match opt-in. The
// disambiguators are applied in strict priority order: SelectIndex, then
// SelectPath, then SelectHash.
type Options struct {
	SelectIndex *int   // 1-based position in the ordered candidate list
	SelectPath  string // exact path signature
	SelectHash  string // long or short content hash
	Multiple    bool   // return all survivors instead of demanding one
}

// Resolve matches a parsed selector against extracted records. The result is
// in source order (file path, then start offset). Without Options.Multiple,
// exactly one survivor is required.
func Resolve(files []*extract.FileEntities, sel *Selector, opts Options) ([]Match, error) {
	candidates := collect(files, sel)
	if len(candidates) == 0 {
		return nil, errors.New(errors.NoMatch,
			fmt.Sprintf("selector %q matched nothing", sel.Raw), nil).
			WithDetails(map[string]interface{}{"selector": sel.Raw})
	}

	filtered, err := applyFilters(candidates, sel.Filters)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return nil, errors.New(errors.NoMatch,
			fmt.Sprintf("selector %q matched %d record(s), but every one was rejected by a filter", sel.Raw, len(candidates)), nil).
			WithDetails(map[string]interface{}{"selector": sel.Raw, "prefiltered": len(candidates)})
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].File != filtered[j].File {
			return filtered[i].File < filtered[j].File
		}
		return filtered[i].Span().Start < filtered[j].Span().Start
	})

	narrowed, err := disambiguate(filtered, sel, opts)
	if err != nil {
		return nil, err
	}

	if len(narrowed) > 1 && !opts.Multiple {
		return nil, ambiguous(sel, narrowed)
	}
	return narrowed, nil
}

// collect finds every record the base matches and keeps only the strongest
// match kind present.
func collect(files []*extract.FileEntities, sel *Selector) []Match {
	var out []Match
	best := MatchBareName + 1

	for _, ent := range entities(files, sel.Type) {
		kind, ok := matchBase(sel, &ent)
		if !ok {
			continue
		}
		out = append(out, Match{Entity: ent, MatchKind: kind})
		if kind < best {
			best = kind
		}
	}

	strongest := out[:0]
	for _, m := range out {
		if m.MatchKind == best {
			strongest = append(strongest, m)
		}
	}
	return strongest
}

func matchBase(sel *Selector, ent *Entity) (MatchKind, bool) {
	base := sel.Base

	switch sel.BaseKind {
	case BaseHash:
		if extract.HashMatches(base, ent.Hash(), ent.ShortHash()) {
			return MatchHash, true
		}
		return 0, false
	case BasePath:
		if base == ent.PathSignature() {
			return MatchPathSignature, true
		}
		return 0, false
	}

	if base == ent.CanonicalName() {
		return MatchCanonicalName, true
	}
	for _, alias := range ent.Aliases() {
		if alias == base && alias != ent.Name() && alias != ent.CanonicalName() {
			return MatchScopeAlias, true
		}
	}
	if extract.HashMatches(base, ent.Hash(), ent.ShortHash()) {
		return MatchHash, true
	}
	if base == ent.PathSignature() {
		return MatchPathSignature, true
	}
	if base == ent.Name() {
		return MatchBareName, true
	}
	return 0, false
}

func applyFilters(in []Match, filters []Filter) ([]Match, error) {
	out := in
	for _, f := range filters {
		pred, err := compileFilter(f)
		if err != nil {
			return nil, err
		}
		kept := out[:0:len(out)]
		for _, m := range out {
			if pred(&m.Entity) {
				kept = append(kept, m)
			}
		}
		out = kept
	}
	return out, nil
}

func compileFilter(f Filter) (func(*Entity) bool, error) {
	switch f.Key {
	case "range", "bytes":
		window, err := parseRange(f.Value)
		if err != nil {
			return nil, err
		}
		return func(e *Entity) bool { return window.ContainsSpan(e.Span()) }, nil

	case "kind":
		set := csvSet(f.Value)
		return func(e *Entity) bool { return set[e.KindLabel()] }, nil

	case "export":
		set := csvSet(f.Value)
		return func(e *Entity) bool { return set[string(e.ExportKind())] }, nil

	case "hash":
		h := f.Value
		return func(e *Entity) bool { return extract.HashMatches(h, e.Hash(), e.ShortHash()) }, nil

	case "path":
		p := f.Value
		return func(e *Entity) bool {
			sig := e.PathSignature()
			return sig == p || strings.HasSuffix(sig, "/"+p)
		}, nil

	case "replaceable":
		want, err := strconv.ParseBool(f.Value)
		if err != nil {
			return nil, errors.Newf(errors.InvalidParameter, "filter @replaceable wants true or false, got %q", f.Value)
		}
		return func(e *Entity) bool { return e.Replaceable() == want }, nil
	}
	return nil, errors.Newf(errors.InvalidParameter, "unknown filter %q", f.Key)
}

func parseRange(v string) (span.Span, error) {
	lo, hi, found := strings.Cut(v, "-")
	if !found {
		return span.Span{}, errors.Newf(errors.InvalidParameter, "range filter wants start-end, got %q", v)
	}
	start, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 32)
	if err != nil {
		return span.Span{}, errors.Newf(errors.InvalidParameter, "bad range start %q", lo)
	}
	end, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 32)
	if err != nil {
		return span.Span{}, errors.Newf(errors.InvalidParameter, "bad range end %q", hi)
	}
	return span.New(uint32(start), uint32(end))
}

func csvSet(v string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = true
		}
	}
	return set
}

func disambiguate(in []Match, sel *Selector, opts Options) ([]Match, error) {
	switch {
	case opts.SelectIndex != nil:
		idx := *opts.SelectIndex
		if idx < 1 || idx > len(in) {
			return nil, errors.Newf(errors.InvalidParameter,
				"--select index %d out of range: selector %q has %d candidate(s)", idx, sel.Raw, len(in))
		}
		return in[idx-1 : idx], nil

	case opts.SelectPath != "":
		var out []Match
		for _, m := range in {
			if m.PathSignature() == opts.SelectPath {
				out = append(out, m)
			}
		}
		if len(out) == 0 {
			return nil, errors.Newf(errors.NoMatch,
				"no candidate of selector %q has path signature %q", sel.Raw, opts.SelectPath)
		}
		return out, nil

	case opts.SelectHash != "":
		var out []Match
		for _, m := range in {
			if extract.HashMatches(opts.SelectHash, m.Hash(), m.ShortHash()) {
				out = append(out, m)
			}
		}
		if len(out) == 0 {
			return nil, errors.Newf(errors.NoMatch,
				"no candidate of selector %q has content hash %q", sel.Raw, opts.SelectHash)
		}
		return out, nil
	}
	return in, nil
}

func ambiguous(sel *Selector, matches []Match) error {
	listed := matches
	if len(listed) > MaxListedCandidates {
		listed = listed[:MaxListedCandidates]
	}
	candidates := make([]map[string]interface{}, len(listed))
	for i, m := range listed {
		candidates[i] = map[string]interface{}{
			"file":          m.File,
			"canonicalName": m.CanonicalName(),
			"line":          m.Line(),
			"shortHash":     m.ShortHash(),
			"pathSignature": m.PathSignature(),
		}
	}
	return errors.New(errors.AmbiguousMatch,
		fmt.Sprintf("selector %q matched %d records; disambiguate with --select, --select-path, or --select hash:<h>", sel.Raw, len(matches)), nil).
		WithDetails(map[string]interface{}{
			"selector":   sel.Raw,
			"total":      len(matches),
			"candidates": candidates,
		})
}
