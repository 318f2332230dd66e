package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFile_ReturnsErrMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail when the config file does not exist")
	}
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Load() error = %v; want errors.Is(err, ErrMissing)", err)
	}
	if !strings.Contains(err.Error(), "pkgsentry init") {
		t.Errorf("error %q should name the remediation command", err)
	}
}

func TestLoad_CorruptFile_ReturnsErrCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on unparseable config")
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("Load() error = %v; want errors.Is(err, ErrCorrupt)", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"is_collecting_stats": true}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.IsCollectingStats {
		t.Error("IsCollectingStats = false; want true")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if err := Save(path, &Config{IsCollectingStats: false}); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if cfg.IsCollectingStats {
		t.Error("IsCollectingStats = true; want false")
	}
}
