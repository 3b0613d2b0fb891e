// Package workspace discovers the JS/TS files of a project and scans them
// into parse results and entity records, in parallel, with a persistent
// extraction cache keyed by content hash. Discovery prefers git's view of
// the tree and falls back to a filesystem walk.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"scalpel/internal/errors"
)

// StateDirName is the per-workspace state directory.
const StateDirName = ".scalpel"

// ProfileFileName is the optional scan profile inside the state directory.
const ProfileFileName = "workspace.toml"

// Profile narrows which files a scan considers.
type Profile struct {
	// Include globs; empty means everything. Matched against the
	// workspace-relative path with path.Match semantics per segmentless
	// pattern, or a simple prefix when the pattern ends in "/".
	Include []string `toml:"include"`
	// Exclude globs, applied after include.
	Exclude []string `toml:"exclude"`

	Dialects struct {
		JavaScript bool `toml:"javascript"`
		TypeScript bool `toml:"typescript"`
	} `toml:"dialects"`
}

// DefaultProfile scans both dialects with no path restrictions.
func DefaultProfile() *Profile {
	p := &Profile{}
	p.Dialects.JavaScript = true
	p.Dialects.TypeScript = true
	return p
}

// StateDir returns the state directory for a workspace root.
func StateDir(root string) string {
	return filepath.Join(root, StateDirName)
}

// LoadProfile reads .scalpel/workspace.toml, returning the default profile
// when the file does not exist.
func LoadProfile(root string) (*Profile, error) {
	path := filepath.Join(StateDir(root), ProfileFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultProfile(), nil
	}
	if err != nil {
		return nil, errors.New(errors.WorkspaceNotReady, "cannot read workspace profile", err)
	}

	p := DefaultProfile()
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, errors.New(errors.InvalidParameter, "malformed workspace profile "+path, err)
	}
	return p, nil
}
