package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scalpel/internal/config"
	"scalpel/internal/output"
	"scalpel/internal/token"
	"scalpel/internal/workspace"
)

var (
	symbolsFile   string
	symbolsType   string
	symbolsKind   string
	symbolsExport string
	symbolsSort   string
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "List extracted functions and variables",
	Long: `Scan the workspace and list every extracted entity with its canonical
name, content hashes, and path signature. The listed names and hashes are
what selectors resolve against.

Examples:
  scalpel symbols
  scalpel symbols --file src/auth.js --type function
  scalpel symbols --export named,default --format table`,
	Args: cobra.NoArgs,
	Run:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFile, "file", "", "Only list entities from this file")
	symbolsCmd.Flags().StringVar(&symbolsType, "type", "all", "Entity type (function, variable, all)")
	symbolsCmd.Flags().StringVar(&symbolsKind, "kind", "", "Comma-separated kind filter (declaration, arrow, class-method, const, ...)")
	symbolsCmd.Flags().StringVar(&symbolsExport, "export", "", "Comma-separated export filter (none, named, default, commonjs-named, commonjs-default)")
	symbolsCmd.Flags().StringVar(&symbolsSort, "sort", "file", "Sort order (file, name, line)")
	rootCmd.AddCommand(symbolsCmd)
}

type symbolRow struct {
	File          string `json:"file"`
	Name          string `json:"name"`
	CanonicalName string `json:"canonicalName"`
	Type          string `json:"type"`
	Kind          string `json:"kind"`
	Export        string `json:"export"`
	Replaceable   bool   `json:"replaceable"`
	Line          int    `json:"line"`
	ShortHash     string `json:"shortHash"`
	PathSignature string `json:"pathSignature"`
}

type symbolListing struct {
	Total   int         `json:"total"`
	Skipped int         `json:"skipped,omitempty"`
	Symbols []symbolRow `json:"symbols"`
}

func (l symbolListing) TableHeader() []string {
	return []string{"FILE", "CANONICAL NAME", "TYPE", "KIND", "EXPORT", "LINE", "HASH"}
}

func (l symbolListing) TableRows() [][]string {
	rows := make([][]string, 0, len(l.Symbols))
	for _, s := range l.Symbols {
		rows = append(rows, []string{
			s.File, s.CanonicalName, s.Type, s.Kind, s.Export,
			strconv.Itoa(s.Line), s.ShortHash,
		})
	}
	return rows
}

func runSymbols(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	snap := mustScan(ctx, root, cfg, logger, true)
	defer snap.Close()

	listing := buildSymbolListing(snap, symbolsFile, symbolsType, symbolsKind, symbolsExport)

	if err := output.MultiFieldSort(&listing.Symbols, symbolSortCriteria(symbolsSort)); err != nil {
		fail(err)
	}

	continuation := issueSymbolsToken(root, cfg, listing)
	emit("symbols", listing, nil, continuation)

	logger.Debug("symbols listed", map[string]interface{}{
		"total":   listing.Total,
		"skipped": listing.Skipped,
	})
}

// buildSymbolListing flattens a snapshot into rows, applying the listing
// filters. Shared with resume, which replays a prior listing.
func buildSymbolListing(snap *workspace.Snapshot, file, typ, kindCSV, exportCSV string) symbolListing {
	kinds := csvSet(kindCSV)
	exports := csvSet(exportCSV)

	listing := symbolListing{Skipped: snap.Skipped}
	for _, fe := range snap.Entities() {
		if file != "" && fe.Path != file {
			continue
		}
		if typ == "all" || typ == "" || typ == "function" {
			for i := range fe.Functions {
				f := &fe.Functions[i]
				if !filterMatch(kinds, string(f.Kind)) || !filterMatch(exports, string(f.ExportKind)) {
					continue
				}
				listing.Symbols = append(listing.Symbols, symbolRow{
					File:          fe.Path,
					Name:          f.Name,
					CanonicalName: f.CanonicalName,
					Type:          "function",
					Kind:          string(f.Kind),
					Export:        string(f.ExportKind),
					Replaceable:   f.Replaceable,
					Line:          f.Line,
					ShortHash:     f.ShortHash,
					PathSignature: f.PathSignature,
				})
			}
		}
		if typ == "all" || typ == "" || typ == "variable" {
			for i := range fe.Variables {
				v := &fe.Variables[i]
				if !filterMatch(kinds, string(v.BindingKind)) || !filterMatch(exports, string(v.ExportKind)) {
					continue
				}
				listing.Symbols = append(listing.Symbols, symbolRow{
					File:          fe.Path,
					Name:          v.Name,
					CanonicalName: v.CanonicalName,
					Type:          "variable",
					Kind:          string(v.BindingKind),
					Export:        string(v.ExportKind),
					Replaceable:   v.Replaceable,
					Line:          v.Line,
					ShortHash:     v.ShortHash,
					PathSignature: v.PathSignature,
				})
			}
		}
	}
	listing.Total = len(listing.Symbols)
	return listing
}

func symbolSortCriteria(key string) []output.SortCriteria {
	switch key {
	case "name":
		return []output.SortCriteria{{Field: "CanonicalName"}, {Field: "File"}}
	case "line":
		return []output.SortCriteria{{Field: "File"}, {Field: "Line"}}
	default:
		return []output.SortCriteria{{Field: "File"}, {Field: "Line"}, {Field: "CanonicalName"}}
	}
}

// issueSymbolsToken signs a continuation token binding this listing's digest,
// so a later resume can detect whether the workspace moved underneath it.
func issueSymbolsToken(root string, cfg *config.Config, listing symbolListing) string {
	codec := mustCodec(root, cfg)
	digest, err := token.ResultsDigest(listing.Symbols)
	if err != nil {
		fail(err)
	}

	var next []token.NextAction
	if len(listing.Symbols) > 0 {
		next = append(next, token.NextAction{
			Command:     "context",
			Description: "Show a padded source window around a listed symbol",
			Parameters: map[string]interface{}{
				"selector": listing.Symbols[0].CanonicalName,
			},
		})
	}

	tok, err := codec.Encode(&token.Payload{
		Command: "symbols",
		Action:  "refine",
		Context: token.Context{ResultsDigest: digest},
		Parameters: map[string]interface{}{
			"file":   symbolsFile,
			"type":   symbolsType,
			"kind":   symbolsKind,
			"export": symbolsExport,
		},
		NextActions: next,
	})
	if err != nil {
		fail(err)
	}
	return tok
}

func csvSet(csv string) map[string]bool {
	if csv == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = true
		}
	}
	return set
}

func filterMatch(set map[string]bool, value string) bool {
	return set == nil || set[value]
}
