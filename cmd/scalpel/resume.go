package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scalpel/internal/errors"
	"scalpel/internal/output"
	"scalpel/internal/token"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <token>",
	Short: "Replay the search behind a continuation token",
	Long: `Validate a continuation token and re-run the selector search or listing
it was issued for. The token is taken from the argument, or from standard
input when the argument is omitted or "-". The replayed results are digested
and compared against the digest recorded in the token; a mismatch means the
workspace changed since the token was issued and is reported as a warning,
never a failure. Replay never re-runs mutations, only searches.

Examples:
  scalpel resume eyJjb21tYW5kIjoi...
  scalpel symbols | jq -r .continuationToken | scalpel resume -`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

type resumePayload struct {
	Command     string                 `json:"command"`
	Action      string                 `json:"action"`
	RequestID   string                 `json:"requestId"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	NextActions []token.NextAction     `json:"nextActions,omitempty"`
	Replayed    interface{}            `json:"replayed"`
}

func runResume(cmd *cobra.Command, args []string) {
	logger := newLogger()
	root := workspaceRoot()
	cfg := mustLoadConfig(root)
	ctx := newContext()

	codec := mustCodec(root, cfg)
	payload, err := codec.Decode(resumeToken(args))
	if err != nil {
		fail(err)
	}

	var replayed interface{}
	var digest string

	switch payload.Command {
	case "symbols":
		snap := mustScan(ctx, root, cfg, logger, true)
		defer snap.Close()

		listing := buildSymbolListing(snap,
			paramString(payload, "file"),
			paramString(payload, "type"),
			paramString(payload, "kind"),
			paramString(payload, "export"))
		if err := output.MultiFieldSort(&listing.Symbols, symbolSortCriteria("file")); err != nil {
			fail(err)
		}
		replayed = listing
		digest, err = token.ResultsDigest(listing.Symbols)

	case "context", "slice":
		snap := mustScan(ctx, root, cfg, logger, true)
		defer snap.Close()

		match, _ := resolveEntity(snap,
			paramString(payload, "selector"),
			paramString(payload, "file"),
			selectorOptions("", "", "", false))
		identity := matchDigestView(match)
		replayed = identity
		digest, err = token.ResultsDigest(identity)

	default:
		fail(errors.Newf(errors.TokenInvalid, "token command %q cannot be replayed", payload.Command))
	}
	if err != nil {
		fail(err)
	}

	var warnings []output.Warning
	if err := token.CheckDigest(payload, digest); err != nil {
		warnings = append(warnings, output.Warning{
			Severity: "warning",
			Code:     string(errors.DigestMismatch),
			Text:     err.Error(),
		})
		logger.Warn("results drifted since token issue", map[string]interface{}{
			"command":   payload.Command,
			"requestId": payload.Context.RequestID,
		})
	}

	emit("resume", resumePayload{
		Command:     payload.Command,
		Action:      payload.Action,
		RequestID:   payload.Context.RequestID,
		Parameters:  payload.Parameters,
		NextActions: payload.NextActions,
		Replayed:    replayed,
	}, warnings, "")
}

// resumeToken picks the token from argv, falling back to standard input for
// a missing or "-" argument.
func resumeToken(args []string) string {
	if len(args) == 1 && args[0] != "-" {
		return args[0]
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fail(errors.New(errors.TokenInvalid, "cannot read token from standard input", err))
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		fail(errors.Newf(errors.TokenInvalid, "no token given on the command line or standard input"))
	}
	return tok
}

func paramString(p *token.Payload, key string) string {
	if s, ok := p.Parameters[key].(string); ok {
		return s
	}
	return ""
}
