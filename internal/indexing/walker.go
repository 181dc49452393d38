package indexing

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/debug"
	radarerrors "github.com/perfradar/radar/internal/errors"
)

// CollectJavaFiles enumerates *.java files under root, honoring the
// configured exclusion globs, size cap, count cap and depth bound.
// Unreadable directories are skipped; only an unreadable root fails.
func CollectJavaFiles(root string, cfg *config.Config) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		scanErr := radarerrors.NewScanError("collect", err).WithFile(root).WithRecoverable(false)
		if os.IsNotExist(err) {
			scanErr = scanErr.WithType(radarerrors.ErrorTypeFileNotFound)
		} else if os.IsPermission(err) {
			scanErr = scanErr.WithType(radarerrors.ErrorTypePermission)
		}
		return nil, scanErr
	}

	excludes := cfg.Exclude
	if build := config.DetectBuild(root); build != nil {
		excludes = append(excludes, build.OutputPatterns...)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogIndexing("skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && pathDepth(rel) >= cfg.Scan.MaxDepth {
				return fs.SkipDir
			}
			if path != root && excluded(rel+"/", excludes) {
				return fs.SkipDir
			}
			if !cfg.Scan.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
				return fs.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".java") || excluded(rel, excludes) {
			return nil
		}

		if info, err := d.Info(); err != nil || info.Size() > cfg.Scan.MaxFileSize {
			return nil
		}

		files = append(files, path)
		if len(files) >= cfg.Scan.MaxFileCount {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// CollectDeployFiles enumerates deployment descriptors under root:
// Spring config files (*.properties, *.yml, *.yaml) and Dockerfiles.
// Same exclusion, depth and size rules as the Java walk.
func CollectDeployFiles(root string, cfg *config.Config) ([]string, error) {
	excludes := cfg.Exclude
	if build := config.DetectBuild(root); build != nil {
		// Build outputs hold copies of the source descriptors.
		excludes = append(excludes, build.OutputPatterns...)
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && pathDepth(rel) >= cfg.Scan.MaxDepth {
				return fs.SkipDir
			}
			if path != root && excluded(rel+"/", excludes) {
				return fs.SkipDir
			}
			return nil
		}

		if !isDeployFile(d.Name()) || excluded(rel, excludes) {
			return nil
		}
		if info, err := d.Info(); err != nil || info.Size() > cfg.Scan.MaxFileSize {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isDeployFile(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".properties"),
		strings.HasSuffix(lower, ".yml"),
		strings.HasSuffix(lower, ".yaml"):
		return true
	case lower == "dockerfile",
		strings.HasPrefix(lower, "dockerfile."),
		strings.HasSuffix(lower, ".dockerfile"):
		return true
	}
	return false
}

// excluded matches a slash-relative path against exclusion globs.
func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func pathDepth(rel string) int {
	return strings.Count(rel, "/") + 1
}
