package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWatcher_DetectsChanges(t *testing.T) {
	tmpDir := t.TempDir()
	factsFile := filepath.Join(tmpDir, "service.yml")
	require.NoError(t, os.WriteFile(factsFile, []byte("beans: []\n"), 0644))

	var mu sync.Mutex
	var changes [][]string

	watcher, err := NewFileWatcher(Options{Dirs: []string{tmpDir}, Delay: 20 * time.Millisecond}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, files)
		return nil
	})
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.Start())

	require.NoError(t, os.WriteFile(factsFile, []byte("beans:\n  - type: com.acme.Foo\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("ignored"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range changes {
		for _, f := range batch {
			assert.Equal(t, "service.yml", filepath.Base(f))
		}
	}
}

func TestFileWatcher_ReportsRemovals(t *testing.T) {
	tmpDir := t.TempDir()
	factsFile := filepath.Join(tmpDir, "service.yml")
	require.NoError(t, os.WriteFile(factsFile, []byte("beans: []\n"), 0644))

	var mu sync.Mutex
	var removed []string
	var changed int

	watcher, err := NewFileWatcher(Options{
		Dirs:  []string{tmpDir},
		Delay: 20 * time.Millisecond,
		OnRemove: func(path string) error {
			mu.Lock()
			defer mu.Unlock()
			removed = append(removed, path)
			return nil
		},
	}, func(files []string) error {
		mu.Lock()
		defer mu.Unlock()
		changed++
		return nil
	})
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.Start())
	require.NoError(t, os.Remove(factsFile))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(removed) > 0
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, factsFile, removed[0])
	assert.Zero(t, changed)
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	watcher, err := NewFileWatcher(Options{Dirs: []string{t.TempDir()}}, func([]string) error { return nil })
	require.NoError(t, err)
	require.NoError(t, watcher.Start())

	assert.NoError(t, watcher.Stop())
	assert.NoError(t, watcher.Stop())
}

func TestNewFileWatcher_RequiresDirs(t *testing.T) {
	_, err := NewFileWatcher(Options{}, func([]string) error { return nil })
	assert.Error(t, err)
}

func TestFileWatcher_StartFailsOnMissingDir(t *testing.T) {
	watcher, err := NewFileWatcher(Options{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}, func([]string) error { return nil })
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Error(t, watcher.Start())
}

func TestFileWatcher_Filters(t *testing.T) {
	fw := &FileWatcher{
		patterns: DefaultPatterns,
		ignored:  []string{filepath.Join("build", "beans"), "*.tmp.yml"},
	}

	tests := []struct {
		path    string
		ignored bool
		matches bool
	}{
		{"beans/service.yml", false, true},
		{"beans/service.yaml", false, true},
		{"beans/service.json", false, true},
		{"beans/service.txt", false, false},
		{"beans/.service.yml", true, true},
		{"beans/service.yml~", true, false},
		{"build/beans/com.acme.$FooDefinition.json", true, true},
		{"build/beans", true, false},
		{"build/beans-old/foo.yml", false, true},
		{"beans/draft.tmp.yml", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			path := filepath.FromSlash(tt.path)
			assert.Equal(t, tt.ignored, fw.shouldIgnore(path), "shouldIgnore")
			assert.Equal(t, tt.matches, fw.matchesPattern(path), "matchesPattern")
		})
	}
}

func TestDebouncer_BatchesAndSorts(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, f)
	})

	debouncer.Add("b.yml")
	debouncer.Add("a.yml")
	debouncer.Add("b.yml")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.yml", "b.yml"}, batches[0])
}

func TestDebouncer_Drop(t *testing.T) {
	var mu sync.Mutex
	var batches [][]string

	debouncer := NewDebouncer(30 * time.Millisecond)
	debouncer.SetCallback(func(f []string) {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, f)
	})

	debouncer.Add("a.yml")
	debouncer.Add("b.yml")
	debouncer.Drop("a.yml")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"b.yml"}, batches[0])
}

func TestDebouncer_Stop(t *testing.T) {
	var mu sync.Mutex
	called := false

	debouncer := NewDebouncer(20 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mu.Lock()
		defer mu.Unlock()
		called = true
	})

	debouncer.Add("a.yml")
	debouncer.Stop()
	debouncer.Add("b.yml")
	debouncer.Stop()

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called, "callback should not run after Stop")
}
