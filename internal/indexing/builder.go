package indexing

import (
	"context"
	"os"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/security"
)

// Large files get a header check before parsing; a renamed jar or
// image burns a whole parse slot otherwise.
var largeFileValidator = security.NewFileValidator(256)

// BuildIndex runs the first radar phase: parse every Java file under
// the configured root and build the cross-file symbol index. Files that
// cannot be read or parsed are skipped and counted; the build itself
// only fails when the root is unreadable or the context is cancelled.
//
// The returned index is complete and must not be mutated afterwards;
// detector workers read it concurrently without locking.
func BuildIndex(ctx context.Context, cfg *config.Config, p *parser.Parser) (*SymbolIndex, error) {
	root := cfg.Project.Root
	files, err := CollectJavaFiles(root, cfg)
	if err != nil {
		return nil, err
	}
	debug.LogIndexing("indexing %d files under %s\n", len(files), root)

	workers := cfg.Performance.MaxGoroutines
	if workers < 1 {
		workers = 1
	}

	partials := make([]*SymbolIndex, workers)
	paths := make(chan string)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		local := NewSymbolIndex()
		partials[w] = local
		g.Go(func() error {
			for path := range paths {
				if err := gctx.Err(); err != nil {
					return err
				}
				indexOne(local, p, path)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(paths)
		for _, path := range files {
			select {
			case paths <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge is the barrier: detectors only ever see the merged result.
	idx := NewSymbolIndex()
	for _, partial := range partials {
		idx.Merge(partial)
	}
	if build := config.DetectBuild(root); build != nil {
		idx.FrameworkHints = build.FrameworkHints
	}
	debug.LogIndexing("indexed %d classes, %d method names (%d files skipped)\n",
		idx.ClassCount(), idx.MethodCount(), idx.FilesSkipped)
	return idx, nil
}

// indexOne parses and extracts one file into a worker-local index.
func indexOne(local *SymbolIndex, p *parser.Parser, path string) {
	if err := largeFileValidator.ValidateJavaFile(path); err != nil {
		debug.LogIndexing("rejected %s: %v\n", path, err)
		local.FilesSkipped++
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		debug.LogIndexing("unreadable %s: %v\n", path, err)
		local.FilesSkipped++
		return
	}

	tree, err := p.Parse(content)
	if err != nil {
		debug.LogIndexing("unparsable %s: %v\n", path, err)
		local.FilesSkipped++
		return
	}
	defer tree.Close()

	extractFile(local, tree.RootNode(), content, path)
	local.setContentHash(path, xxhash.Sum64(content))
	local.FilesIndexed++
}
