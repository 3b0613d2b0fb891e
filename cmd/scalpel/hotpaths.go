package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"scalpel/internal/callgraph"
	"scalpel/internal/relations"
)

var hotpathsLimit int

var hotpathsCmd = &cobra.Command{
	Use:   "hotpaths",
	Short: "List the most-called functions",
	Long: `Rank functions by inbound call count. Heavily called functions are the
riskiest mutation targets; check their importers and callers before a
replace or rename.

Examples:
  scalpel hotpaths
  scalpel hotpaths --limit 5 --format table`,
	Args: cobra.NoArgs,
	Run:  runHotpaths,
}

func init() {
	hotpathsCmd.Flags().IntVar(&hotpathsLimit, "limit", 10, "Maximum entries to list (0 = all)")
	rootCmd.AddCommand(hotpathsCmd)
}

type hotpathsPayload struct {
	Paths []callgraph.HotPath `json:"paths"`
}

func (p hotpathsPayload) TableHeader() []string {
	return []string{"FILE", "NAME", "INBOUND"}
}

func (p hotpathsPayload) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Paths))
	for _, h := range p.Paths {
		rows = append(rows, []string{h.Node.File, h.Node.Name, strconv.Itoa(h.Inbound)})
	}
	return rows
}

func runHotpaths(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, false)
	defer snap.Close()

	files := snap.RelationFiles()
	g := callgraph.Build(files, relations.BuildIndex(files))

	emit("hotpaths", hotpathsPayload{Paths: g.HotPaths(hotpathsLimit)}, nil, "")
}
