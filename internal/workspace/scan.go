package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"scalpel/internal/errors"
	"scalpel/internal/extract"
	"scalpel/internal/logging"
	"scalpel/internal/parser"
	"scalpel/internal/relations"
	"scalpel/internal/storage"
)

// ScanOptions configures one workspace scan.
type ScanOptions struct {
	Profile *Profile
	Cache   *storage.DB // optional extraction cache
	Logger  *logging.Logger
	Workers int // parallel parse workers; NumCPU when <= 0
}

// FileResult is one scanned file. Res is nil when the extraction came from
// the cache (the tree was not rebuilt); Err records per-file failures
// without aborting the scan.
type FileResult struct {
	Path     string
	Res      *parser.Result
	Entities *extract.FileEntities
	Cached   bool
	Err      error
}

// Snapshot is the outcome of scanning a workspace once. It is consistent for
// the session that produced it; a second command re-scans.
type Snapshot struct {
	Root    string
	Files   []*FileResult
	Skipped int // files that failed to parse

	parses *parser.Cache // session parse cache backing Tree
}

// Entities returns every successful extraction, in path order.
func (s *Snapshot) Entities() []*extract.FileEntities {
	var out []*extract.FileEntities
	for _, f := range s.Files {
		if f.Err == nil && f.Entities != nil {
			out = append(out, f.Entities)
		}
	}
	return out
}

// RelationFiles returns the files that have both a live parse tree and an
// extraction, the inputs the relationship indexes need.
func (s *Snapshot) RelationFiles() []*relations.File {
	var out []*relations.File
	for _, f := range s.Files {
		if f.Err == nil && f.Res != nil {
			out = append(out, &relations.File{Res: f.Res, Entities: f.Entities})
		}
	}
	return out
}

// Tree returns a parse result for one scanned file, re-parsing on demand
// when the extraction came from the cache and carried no tree. Results are
// held in the snapshot's bounded parse cache and stay valid until Close;
// callers must not Close them.
func (s *Snapshot) Tree(ctx context.Context, rel string) (*parser.Result, error) {
	for _, f := range s.Files {
		if f.Path != rel {
			continue
		}
		if f.Err != nil {
			return nil, f.Err
		}
		if f.Res != nil {
			return f.Res, nil
		}
		source, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.New(errors.WorkspaceNotReady, "cannot read "+rel, err)
		}
		return s.parses.Parse(ctx, rel, source)
	}
	return nil, errors.Newf(errors.NoMatch, "%s is not part of the scanned workspace", rel)
}

// Close releases every parse tree in the snapshot, including the lazily
// parsed ones.
func (s *Snapshot) Close() {
	for _, f := range s.Files {
		if f.Res != nil {
			f.Res.Close()
		}
	}
	if s.parses != nil {
		s.parses.Purge()
	}
}

// Scan discovers and processes the whole workspace. Files are parsed and
// extracted in parallel; per-file parse failures are recorded, not fatal.
func Scan(ctx context.Context, root string, opts ScanOptions) (*Snapshot, error) {
	profile := opts.Profile
	if profile == nil {
		loaded, err := LoadProfile(root)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	paths, err := Discover(root, profile)
	if err != nil {
		return nil, errors.New(errors.WorkspaceNotReady, "workspace discovery failed", err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	parses, err := parser.NewCache(0)
	if err != nil {
		return nil, errors.New(errors.InternalError, "cannot create parse cache", err)
	}
	snap := &Snapshot{Root: root, parses: parses}
	results := make([]*FileResult, len(paths))

	var cacheMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			results[i] = scanFile(gctx, root, rel, opts.Cache, &cacheMu)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			snap.Skipped++
			log.Warn("file skipped", map[string]interface{}{
				"path":  r.Path,
				"error": r.Err.Error(),
			})
		}
		snap.Files = append(snap.Files, r)
	}
	sort.Slice(snap.Files, func(i, j int) bool { return snap.Files[i].Path < snap.Files[j].Path })

	log.Debug("workspace scanned", map[string]interface{}{
		"root":    root,
		"files":   len(snap.Files),
		"skipped": snap.Skipped,
	})
	return snap, nil
}

func scanFile(ctx context.Context, root, rel string, cache *storage.DB, cacheMu *sync.Mutex) *FileResult {
	out := &FileResult{Path: rel}

	source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		out.Err = err
		return out
	}

	sourceHash := extract.Digest(source)
	if cache != nil {
		cacheMu.Lock()
		fe, hit, err := cache.Get(rel, sourceHash)
		cacheMu.Unlock()
		if err == nil && hit {
			out.Entities = fe
			out.Cached = true
			return out
		}
	}

	res, err := parser.ParseFile(ctx, rel, source)
	if err != nil {
		out.Err = err
		return out
	}
	fe, err := extract.File(res)
	if err != nil {
		res.Close()
		out.Err = err
		return out
	}
	out.Res = res
	out.Entities = fe

	if cache != nil {
		cacheMu.Lock()
		if err := cache.Put(fe); err != nil {
			// Cache failures degrade to uncached scans.
			out.Cached = false
		}
		cacheMu.Unlock()
	}
	return out
}
