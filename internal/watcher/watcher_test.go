package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_RequiresTrigger(t *testing.T) {
	if _, err := New(t.TempDir(), 0, nil); err == nil {
		t.Error("New() should reject a nil trigger")
	}
}

func TestStart_MissingRoot_ReturnsError(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), 0, func() {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err == nil {
		w.Stop()
		t.Error("Start() should fail when the install root does not exist")
	}
}

func TestWatcher_TriggersOnceAfterBurst(t *testing.T) {
	root := t.TempDir()

	var fires atomic.Int32
	w, err := New(root, 50*time.Millisecond, func() {
		fires.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer w.Stop()

	// A burst of changes, closer together than the settle window.
	for i := 0; i < 3; i++ {
		name := filepath.Join(root, "pkg"+string(rune('a'+i)))
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for fires.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := fires.Load(); got != 1 {
		t.Errorf("trigger fired %d times; want exactly 1 for a settled burst", got)
	}
}

func TestStop_BeforeAnyEvent(t *testing.T) {
	w, err := New(t.TempDir(), 0, func() {})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() failed: %v", err)
	}
}
