package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scalpel/internal/config"
	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/logging"
	"scalpel/internal/output"
	"scalpel/internal/selector"
	"scalpel/internal/span"
	"scalpel/internal/storage"
	"scalpel/internal/token"
	"scalpel/internal/workspace"
)

func newLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(logFormatFlag),
		Level:  logging.LogLevel(logLevelFlag),
	})
}

func newContext() context.Context {
	return context.Background()
}

// workspaceRoot resolves the --workspace flag to an absolute path.
func workspaceRoot() string {
	root, err := filepath.Abs(workspaceFlag)
	if err != nil {
		fail(errors.New(errors.WorkspaceNotReady, "cannot resolve workspace root", err))
	}
	return root
}

func mustLoadConfig(root string) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		fail(err)
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}
	return cfg
}

// mustScan runs a full workspace scan. withCache reuses stored extractions
// for unchanged files; cached files carry no tree, so commands that walk
// every parse tree (relations, callgraph) must scan without it. Commands
// that need one file's tree scan with it and use Snapshot.Tree.
func mustScan(ctx context.Context, root string, cfg *config.Config, logger *logging.Logger, withCache bool) *workspace.Snapshot {
	opts := workspace.ScanOptions{
		Logger:  logger,
		Workers: cfg.Scan.Workers,
	}
	if withCache && cfg.Cache.Enabled {
		db, err := storage.Open(workspace.StateDir(root), logger)
		if err != nil {
			logger.Warn("extraction cache unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			opts.Cache = db
			defer db.Close()
		}
	}

	snap, err := workspace.Scan(ctx, root, opts)
	if err != nil {
		fail(err)
	}
	return snap
}

func mustCodec(root string, cfg *config.Config) *token.Codec {
	codec, err := token.NewCodec(workspace.StateDir(root), time.Duration(cfg.Token.TTLHours)*time.Hour)
	if err != nil {
		fail(err)
	}
	return codec
}

// parseSelectValue interprets the --select flag: a 1-based candidate index
// or hash:<digest>.
func parseSelectValue(value string) (index *int, hash string, err error) {
	switch {
	case value == "":
		return nil, "", nil
	case strings.HasPrefix(value, "hash:"):
		h := strings.TrimPrefix(value, "hash:")
		if h == "" {
			return nil, "", errors.Newf(errors.InvalidParameter, "--select hash: needs a digest")
		}
		return nil, h, nil
	}
	idx, convErr := strconv.Atoi(value)
	if convErr != nil || idx < 1 {
		return nil, "", errors.Newf(errors.InvalidParameter,
			"--select wants a 1-based index or hash:<digest>, got %q", value)
	}
	return &idx, "", nil
}

// parseByteSpan parses a start-end byte range flag value. An empty value is
// no range.
func parseByteSpan(flag, value string) *span.Span {
	if value == "" {
		return nil
	}
	lo, hi, found := strings.Cut(value, "-")
	if !found {
		fail(errors.Newf(errors.InvalidParameter, "%s wants start-end byte offsets, got %q", flag, value))
	}
	start, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 32)
	if err != nil {
		fail(errors.Newf(errors.InvalidParameter, "%s has a bad start offset %q", flag, lo))
	}
	end, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 32)
	if err != nil {
		fail(errors.Newf(errors.InvalidParameter, "%s has a bad end offset %q", flag, hi))
	}
	s, err := span.New(uint32(start), uint32(end))
	if err != nil {
		fail(err)
	}
	return &s
}

// selectorOptions assembles disambiguators shared by every selector command.
func selectorOptions(selectValue, path, hash string, multiple bool) selector.Options {
	index, selectHash, err := parseSelectValue(selectValue)
	if err != nil {
		fail(err)
	}
	if selectHash != "" {
		hash = selectHash
	}
	return selector.Options{
		SelectIndex: index,
		SelectPath:  path,
		SelectHash:  hash,
		Multiple:    multiple,
	}
}

// resolveEntity resolves a selector against the snapshot, optionally limited
// to one file, and returns the match plus the scanned file that owns it.
func resolveEntity(snap *workspace.Snapshot, selStr, file string, opts selector.Options) (*selector.Match, *workspace.FileResult) {
	parsed, err := selector.Parse(selStr)
	if err != nil {
		fail(err)
	}

	entities := snap.Entities()
	if file != "" {
		var filtered []*extract.FileEntities
		for _, fe := range entities {
			if fe.Path == file {
				filtered = append(filtered, fe)
			}
		}
		entities = filtered
	}

	matches, err := selector.Resolve(entities, parsed, opts)
	if err != nil {
		fail(err)
	}

	m := &matches[0]
	for _, fr := range snap.Files {
		if fr.Path == m.Entity.File {
			return m, fr
		}
	}
	fail(errors.Newf(errors.InternalError, "resolved entity %q has no scanned file", m.Entity.CanonicalName()))
	return nil, nil
}

// matchDigestView is the stable identity of a resolved match: the fields a
// replay compares to detect drift.
func matchDigestView(match *selector.Match) map[string]interface{} {
	return map[string]interface{}{
		"file":          match.Entity.File,
		"canonicalName": match.Entity.CanonicalName(),
		"hash":          match.Entity.Hash(),
		"pathSignature": match.Entity.PathSignature(),
	}
}

// issueSelectorToken binds a resolved match to a continuation token so a
// later resume can verify the workspace has not drifted underneath it.
func issueSelectorToken(root string, cfg *config.Config, command, selStr, file string, match *selector.Match) string {
	codec := mustCodec(root, cfg)
	digest, err := token.ResultsDigest(matchDigestView(match))
	if err != nil {
		fail(err)
	}
	tok, err := codec.Encode(&token.Payload{
		Command: command,
		Action:  "mutate",
		Context: token.Context{ResultsDigest: digest},
		Parameters: map[string]interface{}{
			"selector": selStr,
			"file":     file,
		},
		NextActions: []token.NextAction{
			{
				Command:     "replace",
				Description: "Replace the entity body under guard",
				Parameters: map[string]interface{}{
					"selector":   selStr,
					"expectHash": match.Entity.Hash(),
					"file":       match.Entity.File,
				},
			},
		},
	})
	if err != nil {
		fail(err)
	}
	return tok
}

// emit renders an envelope to stdout in the requested format.
func emit(command string, data interface{}, warnings []output.Warning, continuation string) {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		fail(err)
	}

	env := output.NewEnvelope(command, data)
	env.Warnings = warnings
	env.ContinuationToken = continuation
	output.SortWarnings(env.Warnings)

	if err := output.Render(os.Stdout, format, env); err != nil {
		fail(err)
	}
}

// fail prints a structured error to stderr and exits. Structured errors keep
// their code and suggested fixes; anything else is wrapped as internal.
func fail(err error) {
	var se *errors.ScalpelError
	if !errors.AsScalpelError(err, &se) {
		se = errors.New(errors.InternalError, err.Error(), nil)
	}
	encoded, encErr := output.DeterministicEncodeIndented(se, "  ")
	if encErr != nil {
		fmt.Fprintln(os.Stderr, se.Error())
	} else {
		fmt.Fprintln(os.Stderr, string(encoded))
	}
	os.Exit(1)
}
