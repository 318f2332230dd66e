package vulnfeed

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const feedDoc = `{
  "openssl": {
    "3.2.1-r0": {
      "CVEs": [
        {"severity": "CRITICAL", "id": "CVE-2024-3000", "details": "key recovery"}
      ]
    }
  }
}`

func TestRefresh_WritesAndLoadsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedDoc))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	path, err := NewCache(srv.URL).Refresh(cacheDir)
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if path != filepath.Join(cacheDir, SnapshotFile) {
		t.Errorf("snapshot path = %q; want it under the cache dir", path)
	}

	db, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot() failed: %v", err)
	}
	cves := db.Lookup("openssl", "3.2.1-r0")
	if len(cves) != 1 || cves[0].ID != "CVE-2024-3000" {
		t.Errorf("Lookup() = %+v; want the one fetched CVE", cves)
	}
}

func TestRefresh_OverwritesPreviousSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedDoc))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	stale := filepath.Join(cacheDir, SnapshotFile)
	if err := os.WriteFile(stale, []byte(`{"oldpkg": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := NewCache(srv.URL).Refresh(cacheDir)
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	db, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := db["oldpkg"]; ok {
		t.Error("stale snapshot content survived Refresh()")
	}
	if _, ok := db["openssl"]; !ok {
		t.Error("fresh snapshot content missing after Refresh()")
	}
}

func TestRefresh_ServerErrorIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewCache(srv.URL).Refresh(t.TempDir()); err == nil {
		t.Error("Refresh() should fail on a non-200 feed response")
	}
}

func TestRefresh_UnreachableFeedIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	if _, err := NewCache(srv.URL).Refresh(t.TempDir()); err == nil {
		t.Error("Refresh() should fail when the feed host is unreachable")
	}
}

func TestRefresh_RejectsMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	cacheDir := t.TempDir()
	if _, err := NewCache(srv.URL).Refresh(cacheDir); err == nil {
		t.Fatal("Refresh() should reject a feed that does not parse")
	}
	if _, err := os.Stat(filepath.Join(cacheDir, SnapshotFile)); !os.IsNotExist(err) {
		t.Error("a malformed feed must not become the cached snapshot")
	}
}
