package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"scalpel/internal/errors"
	"scalpel/internal/relations"
)

var callsDirection string

var callsCmd = &cobra.Command{
	Use:   "calls <name>",
	Short: "List call sites to or from a function",
	Long: `List every call site whose callee (or caller, with --direction from)
matches the given name. Attribution is by name identity, not binding
analysis; member calls match on their final segment. Calls at module level
have an empty caller.

Examples:
  scalpel calls helper
  scalpel calls main --direction from --format table`,
	Args: cobra.ExactArgs(1),
	Run:  runCalls,
}

func init() {
	callsCmd.Flags().StringVar(&callsDirection, "direction", "to", "Direction (to: callers of name, from: calls made by name)")
	rootCmd.AddCommand(callsCmd)
}

type callsPayload struct {
	Name      string               `json:"name"`
	Direction string               `json:"direction"`
	Sites     []relations.CallSite `json:"sites"`
}

func (p callsPayload) TableHeader() []string {
	return []string{"FILE", "CALLER", "CALLEE", "LINE"}
}

func (p callsPayload) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Sites))
	for _, s := range p.Sites {
		caller := s.Caller
		if caller == "" {
			caller = "<module>"
		}
		rows = append(rows, []string{s.File, caller, s.Callee, strconv.Itoa(s.Line)})
	}
	return rows
}

func runCalls(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, false)
	defer snap.Close()

	ix := relations.BuildIndex(snap.RelationFiles())

	payload := callsPayload{Name: args[0], Direction: callsDirection}
	switch callsDirection {
	case "to":
		payload.Sites = ix.CallsTo(args[0])
	case "from":
		payload.Sites = ix.CallsFrom(args[0])
	default:
		fail(errors.Newf(errors.InvalidParameter, "unknown direction %q (expected to or from)", callsDirection))
	}

	emit("calls", payload, nil, "")
}
