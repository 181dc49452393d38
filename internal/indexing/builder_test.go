package indexing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/perfradar/radar/internal/config"
	"github.com/perfradar/radar/internal/parser"
	"github.com/perfradar/radar/internal/types"
)

func writeJava(t *testing.T, root, rel, source string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Project.Root = root
	cfg.Performance.MaxGoroutines = 2
	return cfg
}

func TestBuildIndexAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "repo/OrderRepository.java", `
package repo;

@Repository
public class OrderRepository {
    public Order findById(Long id) { return null; }
}`)
	writeJava(t, root, "service/OrderService.java", `
package service;

@Service
public class OrderService {
    private OrderRepository orders;
    public synchronized void refresh() { }
}`)

	idx, err := BuildIndex(context.Background(), testConfig(root), parser.New())
	if err != nil {
		t.Fatal(err)
	}

	if idx.FilesIndexed != 2 {
		t.Errorf("expected 2 files indexed, got %d", idx.FilesIndexed)
	}

	repo, ok := idx.LookupClass("OrderRepository")
	if !ok {
		t.Fatal("OrderRepository not indexed")
	}
	if repo.Layer != types.LayerRepository {
		t.Errorf("expected repository layer from @Repository, got %s", repo.Layer)
	}

	if recs := idx.LookupMethods("findById"); len(recs) != 1 || recs[0].ClassName != "OrderRepository" {
		t.Errorf("findById not attributed to OrderRepository: %+v", recs)
	}
	if recs := idx.LookupMethods("refresh"); len(recs) != 1 || !recs[0].Synchronized {
		t.Errorf("refresh should be recorded synchronized: %+v", recs)
	}

	if typeName, ok := idx.FieldType("OrderService", "orders"); !ok || typeName != "OrderRepository" {
		t.Errorf("field binding missing, got %q %v", typeName, ok)
	}
}

func TestBuildIndexSkipsUnparsableFile(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "Good.java", `public class Good { void ok() {} }`)
	writeJava(t, root, "Broken.java", `public class Broken { void incomplete( {{{`)

	idx, err := BuildIndex(context.Background(), testConfig(root), parser.New())
	if err != nil {
		t.Fatal(err)
	}

	// tree-sitter produces a tree with ERROR nodes rather than failing;
	// both files index, the broken one best-effort.
	if _, ok := idx.LookupClass("Good"); !ok {
		t.Error("Good must be indexed despite a broken sibling")
	}
	if idx.FilesIndexed+idx.FilesSkipped != 2 {
		t.Errorf("every file accounted for: indexed %d skipped %d", idx.FilesIndexed, idx.FilesSkipped)
	}
}

func TestBuildIndexMissingRootFails(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := BuildIndex(context.Background(), cfg, parser.New()); err == nil {
		t.Error("unreadable root must fail the build")
	}
}

func TestCollectJavaFilesHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/Main.java", "class Main {}")
	writeJava(t, root, "build/Generated.java", "class Generated {}")
	writeJava(t, root, "src/notes.txt", "not java")

	files, err := CollectJavaFiles(root, testConfig(root))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "Main.java" {
		t.Errorf("expected only src/Main.java, got %v", files)
	}
}
