package main

import (
	"github.com/spf13/cobra"

	"scalpel/internal/view"
)

var (
	sliceFile       string
	sliceSelect     string
	sliceSelectPath string
	sliceSelectHash string
)

var sliceCmd = &cobra.Command{
	Use:   "slice <selector>",
	Short: "Show an entity with its single-level file dependencies",
	Long: `Resolve a selector and print the target together with the imports,
top-level constants, and same-file functions its free identifiers reference.
Dependencies are resolved one level deep; transitive uses are not followed.

Examples:
  scalpel slice processOrder
  scalpel slice helper --file src/util.js --format yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runSlice,
}

func init() {
	sliceCmd.Flags().StringVar(&sliceFile, "file", "", "Restrict resolution to this file")
	sliceCmd.Flags().StringVar(&sliceSelect, "select", "", "Pick an ambiguous candidate: 1-based index or hash:<digest>")
	sliceCmd.Flags().StringVar(&sliceSelectPath, "select-path", "", "Disambiguate by path signature")
	sliceCmd.Flags().StringVar(&sliceSelectHash, "select-hash", "", "Disambiguate by content hash")
	rootCmd.AddCommand(sliceCmd)
}

func runSlice(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, true)
	defer snap.Close()

	opts := selectorOptions(sliceSelect, sliceSelectPath, sliceSelectHash, false)
	match, fr := resolveEntity(snap, args[0], sliceFile, opts)

	res, err := snap.Tree(ctx, match.Entity.File)
	if err != nil {
		fail(err)
	}

	s, err := view.BuildSlice(res, fr.Entities, &match.Entity)
	if err != nil {
		fail(err)
	}

	continuation := issueSelectorToken(root, cfg, "slice", args[0], sliceFile, match)
	emit("slice", s, nil, continuation)

	logger.Debug("slice built", map[string]interface{}{
		"target":    match.Entity.CanonicalName(),
		"pieces":    len(s.Pieces),
		"reduction": s.ReductionPct,
	})
}
