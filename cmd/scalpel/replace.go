package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scalpel/internal/errors"
	"scalpel/internal/logging"
	"scalpel/internal/mutate"
	"scalpel/internal/output"
	"scalpel/internal/workspace"
)

var (
	replaceFile       string
	replaceWith       string
	replaceWithFile   string
	replaceRange      string
	replaceExpectHash string
	replaceExpectSpan string
	replaceForce      bool
	replaceApply      bool
	replaceSelect     string
	replaceSelectPath string
	replaceSelectHash string
)

var replaceCmd = &cobra.Command{
	Use:   "replace <selector>",
	Short: "Replace an entity's span under guard",
	Long: `Resolve a selector in one file and substitute the target's span with a
new body, or only a sub-range of it with --range (offsets relative to the
target span's start). The run is a dry run unless --apply is given; nothing
is committed when the post-mutation re-parse fails or the target drifted,
and a stale --expect-hash or --expect-span stops the run before any
transformation.

Examples:
  scalpel replace processOrder --file src/orders.js --with-file new_body.js
  scalpel replace 'Account#deposit' --file src/bank.js --with 'deposit(n) { return this.add(n); }' --apply
  scalpel replace helper --file src/util.js --range 24-31 --with 'limit * 2'
  scalpel replace helper --file src/util.js --with-file body.js --expect-hash 3f9a... --apply`,
	Args: cobra.ExactArgs(1),
	Run:  runReplace,
}

func init() {
	replaceCmd.Flags().StringVar(&replaceFile, "file", "", "File containing the target (required)")
	replaceCmd.Flags().StringVar(&replaceWith, "with", "", "Replacement span text")
	replaceCmd.Flags().StringVar(&replaceWithFile, "with-file", "", "Read the replacement span text from this file")
	replaceCmd.Flags().StringVar(&replaceRange, "range", "", "Substitute only this start-end sub-range of the target span")
	replaceCmd.Flags().StringVar(&replaceExpectHash, "expect-hash", "", "Fail unless the target's current content hash matches (full or short)")
	replaceCmd.Flags().StringVar(&replaceExpectSpan, "expect-span", "", "Fail unless the target still sits at this start-end span")
	replaceCmd.Flags().BoolVar(&replaceForce, "force", false, "Bypass guard violations and path drift (never re-parse failures)")
	replaceCmd.Flags().BoolVar(&replaceApply, "apply", false, "Commit the mutation to disk")
	replaceCmd.Flags().StringVar(&replaceSelect, "select", "", "Pick an ambiguous candidate: 1-based index or hash:<digest>")
	replaceCmd.Flags().StringVar(&replaceSelectPath, "select-path", "", "Disambiguate by path signature")
	replaceCmd.Flags().StringVar(&replaceSelectHash, "select-hash", "", "Disambiguate by content hash")
	replaceCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(replaceCmd)
}

// mutationReport is the response payload of replace and rename.
type mutationReport struct {
	Result   *mutate.Result `json:"result"`
	Plan     *mutate.Plan   `json:"plan"`
	PlanPath string         `json:"planPath,omitempty"`
}

func runReplace(cmd *cobra.Command, args []string) {
	replacement := replaceWith
	if replaceWithFile != "" {
		data, err := os.ReadFile(replaceWithFile)
		if err != nil {
			fail(errors.New(errors.InvalidParameter, "cannot read replacement body", err))
		}
		replacement = string(data)
	}
	subRange := parseByteSpan("--range", replaceRange)
	if replacement == "" && subRange == nil {
		fail(errors.Newf(errors.InvalidParameter, "replace requires --with or --with-file"))
	}

	runMutation(mutate.Request{
		Selector:     args[0],
		Resolve:      selectorOptions(replaceSelect, replaceSelectPath, replaceSelectHash, false),
		Operation:    mutate.OpReplace,
		Replacement:  replacement,
		ReplaceRange: subRange,
		ExpectedHash: replaceExpectHash,
		ExpectedSpan: parseByteSpan("--expect-span", replaceExpectSpan),
		Force:        replaceForce,
		Apply:        replaceApply,
	}, replaceFile, "replace")
}

// runMutation drives the guarded pipeline for replace and rename, persists
// the plan artifact, and renders the guard report. Guard failures still
// produce a report before the process exits non-zero.
func runMutation(req mutate.Request, file, command string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	if req.Force && !cfg.Guard.AllowForce {
		fail(errors.Newf(errors.InvalidParameter, "--force is disabled by guard.allowForce in config"))
	}

	req.Path = filepath.Join(root, filepath.FromSlash(file))
	engine := mutate.NewEngine(logger)

	result, err := engine.Run(ctx, req)
	report := mutationReport{Result: result}
	if result != nil {
		report.Plan = mutate.NewPlan(req, result)
		report.PlanPath = writePlan(root, report.Plan, logger)
	}

	if err != nil {
		if result != nil {
			var warnings []output.Warning
			warnings = append(warnings, output.Warning{
				Severity: "error",
				Code:     string(errors.CodeOf(err)),
				Text:     err.Error(),
			})
			emit(command, report, warnings, "")
		}
		fail(err)
	}

	emit(command, report, nil, "")

	logger.Info("mutation finished", map[string]interface{}{
		"operation": string(req.Operation),
		"file":      file,
		"changed":   result.Changed,
		"applied":   result.Applied,
	})
}

// writePlan stores the plan artifact under .scalpel/plans. A failure to
// persist the artifact is reported but does not abort the run.
func writePlan(root string, plan *mutate.Plan, logger *logging.Logger) string {
	dir := filepath.Join(workspace.StateDir(root), "plans")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("cannot create plan directory", map[string]interface{}{"error": err.Error()})
		return ""
	}
	data, err := output.DeterministicEncodeIndented(plan, "  ")
	if err != nil {
		logger.Warn("cannot encode plan", map[string]interface{}{"error": err.Error()})
		return ""
	}
	path := filepath.Join(dir, plan.ID+".json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		logger.Warn("cannot write plan", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return path
}
