package main

import (
	"github.com/spf13/cobra"

	"scalpel/internal/view"
)

var (
	contextFile       string
	contextBefore     int
	contextAfter      int
	contextMode       string
	contextSelect     string
	contextSelectPath string
	contextSelectHash string
)

var contextCmd = &cobra.Command{
	Use:   "context <selector>",
	Short: "Show a padded source window around an entity",
	Long: `Resolve a selector and print the target's source with surrounding
padding. --mode class or --mode function widens the window to the nearest
enclosing frame of that kind before padding.

Examples:
  scalpel context processOrder
  scalpel context 'Account#deposit' --mode class
  scalpel context helper --file src/util.js --before 200 --after 200`,
	Args: cobra.ExactArgs(1),
	Run:  runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextFile, "file", "", "Restrict resolution to this file")
	contextCmd.Flags().IntVar(&contextBefore, "before", -1, "Bytes of padding before the frame (default from config)")
	contextCmd.Flags().IntVar(&contextAfter, "after", -1, "Bytes of padding after the frame (default from config)")
	contextCmd.Flags().StringVar(&contextMode, "mode", "exact", "Window framing (exact, class, function)")
	contextCmd.Flags().StringVar(&contextSelect, "select", "", "Pick an ambiguous candidate: 1-based index or hash:<digest>")
	contextCmd.Flags().StringVar(&contextSelectPath, "select-path", "", "Disambiguate by path signature")
	contextCmd.Flags().StringVar(&contextSelectHash, "select-hash", "", "Disambiguate by content hash")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, true)
	defer snap.Close()

	opts := selectorOptions(contextSelect, contextSelectPath, contextSelectHash, false)
	match, _ := resolveEntity(snap, args[0], contextFile, opts)

	res, err := snap.Tree(ctx, match.Entity.File)
	if err != nil {
		fail(err)
	}

	before, after := contextBefore, contextAfter
	if before < 0 {
		before = cfg.Context.Before
	}
	if after < 0 {
		after = cfg.Context.After
	}

	c, err := view.BuildContext(res.Source, &match.Entity, view.ContextOptions{
		Before: before,
		After:  after,
		Mode:   view.EnclosingMode(contextMode),
	})
	if err != nil {
		fail(err)
	}

	continuation := issueSelectorToken(root, cfg, "context", args[0], contextFile, match)
	emit("context", c, nil, continuation)
}
