package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"scalpel/internal/callgraph"
	"scalpel/internal/relations"
)

var deadcodeIncludeExported bool

var deadcodeCmd = &cobra.Command{
	Use:   "deadcode",
	Short: "List functions with no inbound calls",
	Long: `List every function node with zero inbound call edges. Exported
functions are assumed reachable from outside the workspace and are excluded
unless --include-exported is given. Attribution is name-based, so dynamic
dispatch and indirect calls can produce false positives; treat the output
as candidates, not verdicts.

Examples:
  scalpel deadcode
  scalpel deadcode --include-exported --format table`,
	Args: cobra.NoArgs,
	Run:  runDeadcode,
}

func init() {
	deadcodeCmd.Flags().BoolVar(&deadcodeIncludeExported, "include-exported", false, "Also list exported functions with no inbound calls")
	rootCmd.AddCommand(deadcodeCmd)
}

type deadcodePayload struct {
	Total int               `json:"total"`
	Nodes []*callgraph.Node `json:"nodes"`
}

func (p deadcodePayload) TableHeader() []string {
	return []string{"FILE", "NAME", "KIND", "EXPORTED", "LINE"}
}

func (p deadcodePayload) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		rows = append(rows, []string{
			n.File, n.Name, string(n.Kind),
			strconv.FormatBool(n.Exported), strconv.Itoa(n.Line),
		})
	}
	return rows
}

func runDeadcode(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, false)
	defer snap.Close()

	files := snap.RelationFiles()
	g := callgraph.Build(files, relations.BuildIndex(files))

	nodes := g.DeadCode(deadcodeIncludeExported)
	emit("deadcode", deadcodePayload{Total: len(nodes), Nodes: nodes}, nil, "")
}
