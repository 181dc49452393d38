package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/goleak"
)

func TestWatcherTriggersOnJavaWrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "OrderService.java")
	if err := os.WriteFile(path, []byte("class OrderService {}"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := NewWatcher(root, 20*time.Millisecond, func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	if err := os.WriteFile(path, []byte("class OrderService { int n; }"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher never fired after a write")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	<-done
}

func TestWatcherDebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "Burst.java")
	if err := os.WriteFile(path, []byte("class Burst {}"), 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := NewWatcher(root, 150*time.Millisecond, func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Each write has distinct content so the hash gate does not absorb it.
	for i := 0; i < 5; i++ {
		content := []byte("class Burst { int n = " + string(rune('0'+i)) + "; }")
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(400 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("burst of writes should coalesce into one trigger, got %d", got)
	}

	cancel()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	<-done
}

func TestWatcherPrimedFromIndexAbsorbsRewrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "Indexed.java")
	content := []byte("class Indexed {}")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	// Hashes recorded at index time stand in for a completed scan.
	idx := NewSymbolIndex()
	idx.setContentHash(path, xxhash.Sum64(content))

	var fired atomic.Int32
	w, err := NewWatcher(root, 20*time.Millisecond, func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}
	w.Prime(idx)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// The very first rewrite matches the indexed hash and must not
	// trigger, unlike an unprimed watcher which has nothing to compare.
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("rewrite matching the indexed content must not trigger, got %d", got)
	}

	if err := os.WriteFile(path, []byte("class Indexed { int n; }"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("changed content must trigger once, got %d", got)
	}

	cancel()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	<-done
}

func TestWatcherIgnoresIdenticalRewrite(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	path := filepath.Join(root, "Same.java")
	content := []byte("class Same {}")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32
	w, err := NewWatcher(root, 20*time.Millisecond, func() { fired.Add(1) })
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// First write populates the hash map and triggers once.
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	first := fired.Load()

	// Identical rewrite must be absorbed.
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := fired.Load(); got != first {
		t.Errorf("identical content rewrite must not retrigger: %d -> %d", first, got)
	}

	cancel()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	<-done
}
