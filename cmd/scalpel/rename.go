package main

import (
	"github.com/spf13/cobra"

	"scalpel/internal/mutate"
)

var (
	renameFile       string
	renameReferences bool
	renameExpectHash string
	renameExpectSpan string
	renameForce      bool
	renameApply      bool
	renameSelect     string
	renameSelectPath string
	renameSelectHash string
)

var renameCmd = &cobra.Command{
	Use:   "rename <selector> <new-name>",
	Short: "Rename an entity's declaration identifier under guard",
	Long: `Resolve a selector in one file and substitute its declaration
identifier; no bytes outside that identifier change. --references widens the
rename to every same-named identifier in the file, with textual attribution:
shadowing bindings of the same name are renamed too, and property names are
only touched for member-style targets. Dry run unless --apply is given.

Examples:
  scalpel rename processOrder handleOrder --file src/orders.js
  scalpel rename processOrder handleOrder --file src/orders.js --references
  scalpel rename 'Account#deposit' credit --file src/bank.js --apply`,
	Args: cobra.ExactArgs(2),
	Run:  runRename,
}

func init() {
	renameCmd.Flags().StringVar(&renameFile, "file", "", "File containing the target (required)")
	renameCmd.Flags().BoolVar(&renameReferences, "references", false, "Also rename every same-named identifier in the file")
	renameCmd.Flags().StringVar(&renameExpectHash, "expect-hash", "", "Fail unless the target's current content hash matches (full or short)")
	renameCmd.Flags().StringVar(&renameExpectSpan, "expect-span", "", "Fail unless the target still sits at this start-end span")
	renameCmd.Flags().BoolVar(&renameForce, "force", false, "Bypass guard violations and path drift (never re-parse failures)")
	renameCmd.Flags().BoolVar(&renameApply, "apply", false, "Commit the mutation to disk")
	renameCmd.Flags().StringVar(&renameSelect, "select", "", "Pick an ambiguous candidate: 1-based index or hash:<digest>")
	renameCmd.Flags().StringVar(&renameSelectPath, "select-path", "", "Disambiguate by path signature")
	renameCmd.Flags().StringVar(&renameSelectHash, "select-hash", "", "Disambiguate by content hash")
	renameCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(renameCmd)
}

func runRename(cmd *cobra.Command, args []string) {
	runMutation(mutate.Request{
		Selector:         args[0],
		Resolve:          selectorOptions(renameSelect, renameSelectPath, renameSelectHash, false),
		Operation:        mutate.OpRename,
		Replacement:      args[1],
		RenameReferences: renameReferences,
		ExpectedHash:     renameExpectHash,
		ExpectedSpan:     parseByteSpan("--expect-span", renameExpectSpan),
		Force:            renameForce,
		Apply:            renameApply,
	}, renameFile, "rename")
}
