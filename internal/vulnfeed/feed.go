// Package vulnfeed fetches the vulnerability feed and correlates it with
// the installed package inventory.
package vulnfeed

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// SnapshotFile is the cached feed document name under the cache directory.
const SnapshotFile = "cve-feed.json"

// CVE is one vulnerability entry from the feed.
type CVE struct {
	Severity string `json:"severity"`
	ID       string `json:"id"`
	Details  string `json:"details"`
}

// releaseEntry is the per-release object in the feed document.
type releaseEntry struct {
	CVEs []CVE `json:"CVEs"`
}

// Database is one immutable feed snapshot: package name → release
// identifier → vulnerability list.
type Database map[string]map[string]releaseEntry

// Lookup returns the CVEs recorded for an exact package name and release
// identifier pair, in feed-list order. The match is deliberately strict:
// any drift in case, whitespace, or versioning scheme yields no results
// rather than risking false positives on forked or renamed releases.
func (db Database) Lookup(name, release string) []CVE {
	releases, ok := db[name]
	if !ok {
		return nil
	}
	entry, ok := releases[release]
	if !ok {
		return nil
	}
	return entry.CVEs
}

// Cache fetches and stores the feed snapshot for one audit run.
type Cache struct {
	url    string
	client *http.Client
}

// NewCache creates a Cache that fetches the feed document from url.
func NewCache(url string) *Cache {
	return &Cache{
		url:    url,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Refresh fetches the feed and writes it to the snapshot path under
// cacheDir, unconditionally overwriting any previous snapshot. There is no
// conditional fetch and no TTL: every audit starts from a full refresh.
// Failure here is fatal to the audit; without a snapshot there is nothing
// to correlate against.
func (c *Cache) Refresh(cacheDir string) (string, error) {
	resp, err := c.client.Get(c.url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch vulnerability feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vulnerability feed returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read vulnerability feed: %w", err)
	}

	// Reject documents that do not even parse, so a half-served response
	// never becomes the cached snapshot.
	var probe Database
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", fmt.Errorf("vulnerability feed is not valid JSON: %w", err)
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(cacheDir, SnapshotFile)
	tmp, err := os.CreateTemp(cacheDir, ".cve-feed-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot parses a previously written snapshot file.
func LoadSnapshot(path string) (Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return db, nil
}
