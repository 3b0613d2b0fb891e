package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"scalpel/internal/errors"
	"scalpel/internal/relations"
)

var (
	importersName string
	importersRisk bool
)

var importersCmd = &cobra.Command{
	Use:   "importers <file>",
	Short: "List files importing or re-exporting a module",
	Long: `Show every workspace file whose imports or re-exports resolve to the
given file. Relative specifiers are resolved with the usual extension and
index candidates; bare package specifiers never match workspace files.
Imports recovered by the regex fallback are marked approximate.

With --risk and --name, combines importer count, call sites, and re-exports
into a LOW/MEDIUM/HIGH usage tier for that entity.

Examples:
  scalpel importers src/util.js
  scalpel importers src/util.js --name helper --risk`,
	Args: cobra.ExactArgs(1),
	Run:  runImporters,
}

func init() {
	importersCmd.Flags().StringVar(&importersName, "name", "", "Entity name for the risk report")
	importersCmd.Flags().BoolVar(&importersRisk, "risk", false, "Include a usage risk report (requires --name)")
	rootCmd.AddCommand(importersCmd)
}

type importersPayload struct {
	File      string                `json:"file"`
	Importers []relations.Import    `json:"importers"`
	ReExports []relations.ReExport  `json:"reExports,omitempty"`
	Risk      *relations.RiskReport `json:"risk,omitempty"`
}

func (p importersPayload) TableHeader() []string {
	return []string{"IMPORTER", "SPECIFIER", "KIND", "LINE", "APPROXIMATE"}
}

func (p importersPayload) TableRows() [][]string {
	rows := make([][]string, 0, len(p.Importers))
	for _, imp := range p.Importers {
		rows = append(rows, []string{
			imp.File, imp.Specifier, string(imp.Kind),
			strconv.Itoa(imp.Line), strconv.FormatBool(imp.Approximate),
		})
	}
	return rows
}

func runImporters(cmd *cobra.Command, args []string) {
	if importersRisk && importersName == "" {
		fail(errors.Newf(errors.InvalidParameter, "--risk requires --name"))
	}

	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, false)
	defer snap.Close()

	ix := relations.BuildIndex(snap.RelationFiles())
	target := args[0]

	payload := importersPayload{
		File:      target,
		Importers: ix.ImportersOf(target),
		ReExports: ix.ReExportersOf(target),
	}
	if importersRisk {
		r := ix.Risk(target, importersName)
		payload.Risk = &r
	}

	emit("importers", payload, nil, "")

	logger.Debug("importers resolved", map[string]interface{}{
		"file":      target,
		"importers": len(payload.Importers),
		"reExports": len(payload.ReExports),
	})
}
