package workspace

import (
	"bytes"
	"io/fs"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"scalpel/internal/parser"
)

// skipDirs are never descended into by the walk fallback.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	StateDirName:   true,
}

// Discover lists the workspace-relative paths of all scannable source files,
// sorted. Inside a git repository it asks git for the tracked and untracked
// (non-ignored) files; elsewhere it walks the tree.
func Discover(root string, profile *Profile) ([]string, error) {
	if profile == nil {
		profile = DefaultProfile()
	}

	files, err := gitFiles(root)
	if err != nil {
		files, err = walkFiles(root)
		if err != nil {
			return nil, err
		}
	}

	var out []string
	for _, rel := range files {
		if keep(rel, profile) {
			out = append(out, rel)
		}
	}
	sort.Strings(out)
	return out, nil
}

func gitFiles(root string) ([]string, error) {
	cmd := exec.Command("git", "-C", root, "ls-files", "-z", "--cached", "--others", "--exclude-standard")
	raw, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range bytes.Split(raw, []byte{0}) {
		if len(entry) > 0 {
			files = append(files, string(entry))
		}
	}
	return files, nil
}

func walkFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	return files, err
}

func keep(rel string, profile *Profile) bool {
	lang, ok := parser.LanguageForFile(rel)
	if !ok {
		return false
	}
	switch lang {
	case parser.LangJavaScript:
		if !profile.Dialects.JavaScript {
			return false
		}
	case parser.LangTypeScript, parser.LangTSX:
		if !profile.Dialects.TypeScript {
			return false
		}
	}

	// git ls-files can still surface files under skipped directories in
	// odd setups; filter uniformly.
	for _, seg := range strings.Split(path.Dir(rel), "/") {
		if skipDirs[seg] || (seg != "." && strings.HasPrefix(seg, ".")) {
			return false
		}
	}

	if len(profile.Include) > 0 && !matchAny(profile.Include, rel) {
		return false
	}
	if matchAny(profile.Exclude, rel) {
		return false
	}
	return true
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if strings.HasSuffix(pat, "/") {
			if strings.HasPrefix(rel, pat) || strings.HasPrefix(rel+"/", pat) {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(rel)); ok {
			return true
		}
	}
	return false
}
