// Package inventory enumerates the active, metadata-bearing packages under
// the symlink-based install root.
package inventory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ActiveMarker is the file whose presence marks a package home as
	// currently activated.
	ActiveMarker = ".active"

	// MetadataFile is the per-package metadata document.
	MetadataFile = "metadata.json"
)

// Package describes one active installed package.
type Package struct {
	Name    string // symlink name under the install root
	Home    string // resolved package home directory
	Release string // release identifier from the metadata document
}

// metadata is the subset of the package metadata document the audit needs.
type metadata struct {
	Release string `json:"release"`
}

// ListActive enumerates symlinks directly under root, resolves each to its
// package home, and returns the entries that carry both the active marker
// and a metadata document with a release identifier. Entries lacking either
// are excluded from audit coverage; the exclusion is logged at debug level
// only, it is not an error.
//
// Results follow directory enumeration order, which downstream report
// ordering depends on.
func ListActive(root string, log *slog.Logger) ([]Package, error) {
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read install root %s: %w", root, err)
	}

	var pkgs []Package
	for _, entry := range entries {
		name := entry.Name()
		linkPath := filepath.Join(root, name)

		info, err := os.Lstat(linkPath)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			continue // only symlinks represent installed packages
		}

		target, err := os.Readlink(linkPath)
		if err != nil {
			log.Debug("inventory: unreadable symlink, skipping", "package", name, "error", err)
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(root, target)
		}
		home := filepath.Clean(target)

		if _, err := os.Stat(filepath.Join(home, ActiveMarker)); err != nil {
			log.Debug("inventory: no active marker, skipping", "package", name)
			continue
		}

		release, err := readRelease(filepath.Join(home, MetadataFile))
		if err != nil {
			log.Debug("inventory: no usable metadata, skipping", "package", name, "error", err)
			continue
		}

		pkgs = append(pkgs, Package{Name: name, Home: home, Release: release})
	}

	return pkgs, nil
}

// readRelease parses the metadata document and returns its release field.
func readRelease(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var md metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return "", fmt.Errorf("invalid metadata: %w", err)
	}
	if md.Release == "" {
		return "", fmt.Errorf("metadata has no release field")
	}
	return md.Release, nil
}
