// Package mutate performs guarded replace and rename operations on one source
// file. Every operation moves through the same ordered stages and records the
// outcome of each named check (span, hash, path, syntax, result) in a guard
// bundle, so callers can see exactly which check rejected a mutation and
// whether it was forced past.
//
// Nothing touches the original file until the final commit stage, and commit
// runs only when the caller asked for it: the default is a dry run returning
// the candidate buffer.
package mutate

import (
	"bytes"
	"context"
	"os"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/logging"
	"scalpel/internal/parser"
	"scalpel/internal/selector"
	"scalpel/internal/span"
)

// Operation names a mutation type.
type Operation string

const (
	OpReplace Operation = "replace"
	OpRename  Operation = "rename"
)

// GuardStatus is the recorded outcome of one guard check.
type GuardStatus string

const (
	GuardOK       GuardStatus = "ok"
	GuardMismatch GuardStatus = "mismatch"
	GuardBypass   GuardStatus = "bypass"
	GuardPending  GuardStatus = "pending"
)

// SpanCheck compares the caller's expected target span against the resolved
// one. The expectation fields are present only when the caller supplied one.
type SpanCheck struct {
	Status        GuardStatus `json:"status"`
	ExpectedStart *uint32     `json:"expectedStart,omitempty"`
	ExpectedEnd   *uint32     `json:"expectedEnd,omitempty"`
}

// HashCheck compares the caller's expected content hash against the resolved
// target's. Actual is recorded even without an expectation.
type HashCheck struct {
	Status   GuardStatus `json:"status"`
	Expected string      `json:"expected,omitempty"`
	Actual   string      `json:"actual,omitempty"`
}

// PathCheck records whether the target still resolves at its structural path
// after the mutation.
type PathCheck struct {
	Status    GuardStatus `json:"status"`
	Signature string      `json:"signature,omitempty"`
}

// SyntaxCheck records whether the candidate buffer parses.
type SyntaxCheck struct {
	Status GuardStatus `json:"status"`
}

// ResultCheck carries the target's content hash before and after the
// mutation.
type ResultCheck struct {
	Status GuardStatus `json:"status"`
	Before string      `json:"before,omitempty"`
	After  string      `json:"after,omitempty"`
}

// Guard is the machine-consumable bundle of named checks for one operation.
// A check that was never reached stays pending.
type Guard struct {
	Span   SpanCheck   `json:"span"`
	Hash   HashCheck   `json:"hash"`
	Path   PathCheck   `json:"path"`
	Syntax SyntaxCheck `json:"syntax"`
	Result ResultCheck `json:"result"`
	Forced bool        `json:"forced"`
}

func newGuard(forced bool) *Guard {
	return &Guard{
		Span:   SpanCheck{Status: GuardPending},
		Hash:   HashCheck{Status: GuardPending},
		Path:   PathCheck{Status: GuardPending},
		Syntax: SyntaxCheck{Status: GuardPending},
		Result: ResultCheck{Status: GuardPending},
		Forced: forced,
	}
}

// Request describes one mutation.
type Request struct {
	Path     string
	Source   []byte // read from Path when nil
	Selector string
	Resolve  selector.Options

	Operation   Operation
	Replacement string // replace: new text; rename: new identifier

	// ReplaceRange narrows a replace to a sub-range of the target, with
	// offsets relative to the target span's start. Nil replaces the whole
	// span. An empty Replacement deletes the sub-range.
	ReplaceRange *span.Span

	// RenameReferences extends a rename beyond the declaration identifier
	// to every same-named identifier in the file.
	RenameReferences bool

	ExpectedHash string     // optional: target content hash the caller last saw
	ExpectedSpan *span.Span // optional: target span the caller last saw
	Force        bool       // bypass GUARD_VIOLATION and PATH_DRIFT
	Apply        bool       // commit to disk; dry run when false
}

// TargetInfo summarizes the resolved entity before and after the mutation.
type TargetInfo struct {
	CanonicalName string    `json:"canonicalName"`
	Span          span.Span `json:"span"`
	OldHash       string    `json:"oldHash"`
	NewHash       string    `json:"newHash,omitempty"`
	PathSignature string    `json:"pathSignature"`
}

// Result is the outcome of one mutation run.
type Result struct {
	Operation Operation  `json:"operation"`
	File      string     `json:"file"`
	Target    TargetInfo `json:"target"`
	Guard     *Guard     `json:"guard"`
	Changed   bool       `json:"changed"`
	Applied   bool       `json:"applied"`
	NewSource []byte     `json:"-"`
}

// Engine runs mutations.
type Engine struct {
	log *logging.Logger
}

// NewEngine returns an engine logging through log. A nil logger is replaced
// with a no-op logger.
func NewEngine(log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{log: log}
}

// Run executes one guarded mutation. The returned Result is non-nil whenever
// the pipeline got far enough to have a guard bundle, including on error.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	guard := newGuard(req.Force)
	result := &Result{
		Operation: req.Operation,
		File:      req.Path,
		Guard:     guard,
	}

	source := req.Source
	if source == nil {
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return result, errors.New(errors.WorkspaceNotReady, "cannot read "+req.Path, err)
		}
		source = data
	}

	// Stage 1: resolve the selector to exactly one entity. Failures here
	// leave every guard check pending.
	res, err := parser.ParseFile(ctx, req.Path, source)
	if err != nil {
		return result, err
	}
	defer res.Close()

	fe, err := extract.File(res)
	if err != nil {
		return result, err
	}

	sel, err := selector.Parse(req.Selector)
	if err != nil {
		return result, err
	}
	opts := req.Resolve
	opts.Multiple = false
	matches, err := selector.Resolve([]*extract.FileEntities{fe}, sel, opts)
	if err != nil {
		return result, err
	}
	ent := &matches[0].Entity

	result.Target = TargetInfo{
		CanonicalName: ent.CanonicalName(),
		Span:          ent.Span(),
		OldHash:       ent.Hash(),
		PathSignature: ent.PathSignature(),
	}

	// Stage 2: pre-guards.
	if err := e.preGuard(guard, req, ent); err != nil {
		return result, err
	}

	// Stage 3: transform into edits.
	edits, err := e.transform(req, res, ent)
	if err != nil {
		return result, err
	}

	// Stage 4: apply the edits to a candidate buffer.
	candidate := applyEdits(source, edits)
	result.NewSource = candidate
	result.Changed = !bytes.Equal(candidate, source)

	// Stage 5: the candidate must parse. Never bypassable.
	newRes, err := parser.ParseFile(ctx, req.Path, candidate)
	if err != nil {
		guard.Syntax.Status = GuardMismatch
		return result, errors.New(errors.InvalidResult,
			"mutation would leave "+req.Path+" syntactically invalid", err)
	}
	defer newRes.Close()
	guard.Syntax.Status = GuardOK

	// Stage 6: post-guards on the re-extracted candidate.
	newFe, err := extract.File(newRes)
	if err != nil {
		guard.Result.Status = GuardMismatch
		return result, errors.New(errors.InvalidResult, "candidate re-extraction failed", err)
	}
	if err := e.postGuard(guard, req, result, ent, newFe); err != nil {
		return result, err
	}

	// Stage 7: commit.
	if !req.Apply {
		return result, nil
	}
	if err := os.WriteFile(req.Path, candidate, 0o644); err != nil {
		return result, errors.New(errors.InternalError, "cannot write "+req.Path, err)
	}
	result.Applied = true

	e.log.Info("mutation applied", map[string]interface{}{
		"file":      req.Path,
		"operation": string(req.Operation),
		"target":    ent.CanonicalName(),
	})
	return result, nil
}

func (e *Engine) preGuard(guard *Guard, req Request, ent *selector.Entity) error {
	if !ent.Replaceable() {
		return errors.Newf(errors.InvalidParameter,
			"%s is anonymous and cannot be mutated; address a named form instead", ent.CanonicalName())
	}
	if req.Operation == OpRename && ent.IdentifierSpan() == nil {
		return errors.Newf(errors.InvalidParameter, "%s has no rename-relevant identifier", ent.CanonicalName())
	}

	guard.Span.Status = GuardOK
	if req.ExpectedSpan != nil {
		expected := *req.ExpectedSpan
		guard.Span.ExpectedStart = &expected.Start
		guard.Span.ExpectedEnd = &expected.End
		if expected != ent.Span() {
			if !req.Force {
				guard.Span.Status = GuardMismatch
				return errors.New(errors.GuardViolation,
					"target span moved since last read; re-read it or pass --force", nil).
					WithDetails(map[string]interface{}{
						"expected": expected.String(),
						"actual":   ent.Span().String(),
					})
			}
			guard.Span.Status = GuardBypass
			e.log.Warn("span guard bypassed", map[string]interface{}{"target": ent.CanonicalName()})
		}
	}

	guard.Hash.Actual = ent.Hash()
	guard.Hash.Status = GuardOK
	if req.ExpectedHash != "" {
		guard.Hash.Expected = req.ExpectedHash
		if !extract.HashMatches(req.ExpectedHash, ent.Hash(), ent.ShortHash()) {
			if !req.Force {
				guard.Hash.Status = GuardMismatch
				return errors.New(errors.GuardViolation,
					"target content differs from the expected hash; re-read it or pass --force", nil).
					WithDetails(map[string]interface{}{
						"expected": req.ExpectedHash,
						"actual":   ent.ShortHash(),
					})
			}
			guard.Hash.Status = GuardBypass
			e.log.Warn("hash guard bypassed", map[string]interface{}{"target": ent.CanonicalName()})
		}
	}
	return nil
}

func (e *Engine) postGuard(guard *Guard, req Request, result *Result, old *selector.Entity, newFe *extract.FileEntities) error {
	var newHash string
	found := false

	if req.Operation == OpRename {
		// A rename moves the record to its new name; find it there.
		for i := range newFe.Functions {
			if newFe.Functions[i].Name == req.Replacement {
				newHash = newFe.Functions[i].Hash
				found = true
				break
			}
		}
		if !found {
			for i := range newFe.Variables {
				if newFe.Variables[i].Name == req.Replacement {
					newHash = newFe.Variables[i].Hash
					found = true
					break
				}
			}
		}
	} else {
		if f := newFe.FunctionByPath(old.PathSignature()); f != nil {
			newHash = f.Hash
			found = true
		} else if v := newFe.VariableByPath(old.PathSignature()); v != nil {
			newHash = v.Hash
			found = true
		}
	}

	guard.Path.Signature = old.PathSignature()
	if !found {
		if !req.Force {
			guard.Path.Status = GuardMismatch
			return errors.New(errors.PathDrift,
				"mutated entity no longer resolves at its structural path; inspect the dry-run output or pass --force", nil).
				WithDetails(map[string]interface{}{"pathSignature": old.PathSignature()})
		}
		guard.Path.Status = GuardBypass
		return nil
	}

	guard.Path.Status = GuardOK
	result.Target.NewHash = newHash
	guard.Result = ResultCheck{Status: GuardOK, Before: old.Hash(), After: newHash}
	return nil
}
