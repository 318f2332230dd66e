// Package ledger owns the local analytics ledger: the profile identity plus
// the append-only install and remove histories. The ledger is a single JSON
// document; every mutation is a read-modify-write committed with an atomic
// temp-then-rename, performed under a single-writer lock so concurrent
// package operations cannot drop each other's events.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCorrupt indicates the ledger file exists but could not be parsed.
// This is never auto-repaired: the operator must run 'pkgsentry ledger rebuild'.
var ErrCorrupt = errors.New("analytics ledger is corrupt; run 'pkgsentry ledger rebuild'")

// ErrNotInitialized indicates the ledger file does not exist yet.
var ErrNotInitialized = errors.New("analytics ledger not found; run 'pkgsentry init' first")

// Profile identifies an installation. Created once at init time and
// immutable afterwards.
type Profile struct {
	UUID  string `json:"uuid"`
	IsBot bool   `json:"isBot"`
	IsIBM bool   `json:"isIBM"`
}

// InstallEvent records one package installation.
type InstallEvent struct {
	Name                       string `json:"name"`
	Version                    string `json:"version"`
	Timestamp                  int64  `json:"timestamp"`
	IsUpgrade                  bool   `json:"isUpgrade"`
	IsBuildInstall             bool   `json:"isBuildInstall"`
	IsRuntimeDependencyInstall bool   `json:"isRuntimeDependencyInstall"`
}

// RemoveEvent records one package removal.
type RemoveEvent struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// Ledger is the on-disk document shape.
type Ledger struct {
	Profile  Profile        `json:"profile"`
	Installs []InstallEvent `json:"installs"`
	Removes  []RemoveEvent  `json:"removes"`
}

// Store provides serialized access to the ledger file.
type Store struct {
	path string
	lock *fileLock
}

// Open returns a Store for the ledger at path. The file is not required to
// exist yet; see Init.
func Open(path string) *Store {
	return &Store{
		path: path,
		lock: newFileLock(path + ".lock"),
	}
}

// Path returns the canonical ledger path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the ledger file is present. The ledger doubles as
// the first-run indicator for the consent gate.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and parses the ledger.
func (s *Store) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w (looked in %s)", ErrNotInitialized, s.path)
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", s.path, err)
	}

	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w (%s: %v)", ErrCorrupt, s.path, err)
	}
	return &l, nil
}

// Init writes a fresh ledger containing only the profile. It refuses to
// overwrite an existing ledger: the profile is written exactly once.
func (s *Store) Init(p Profile) error {
	if s.Exists() {
		return fmt.Errorf("ledger already exists at %s", s.path)
	}
	return s.write(&Ledger{Profile: p, Installs: []InstallEvent{}, Removes: []RemoveEvent{}})
}

// AppendInstall appends one install event under the writer lock.
func (s *Store) AppendInstall(ev InstallEvent) error {
	return s.mutate(func(l *Ledger) {
		l.Installs = append(l.Installs, ev)
	})
}

// AppendRemove appends one remove event under the writer lock.
func (s *Store) AppendRemove(ev RemoveEvent) error {
	return s.mutate(func(l *Ledger) {
		l.Removes = append(l.Removes, ev)
	})
}

// ProfileID returns the profile uuid from the ledger.
func (s *Store) ProfileID() (string, error) {
	l, err := s.Load()
	if err != nil {
		return "", err
	}
	return l.Profile.UUID, nil
}

// Rebuild archives a corrupt ledger aside and writes a fresh one. The
// profile uuid is salvaged from the damaged file when it can still be
// decoded; otherwise the caller-provided fallback profile is used. Returns
// the archive path ("" when there was nothing to archive).
func (s *Store) Rebuild(fallback Profile) (string, error) {
	archive := ""
	if data, err := os.ReadFile(s.path); err == nil {
		// Best-effort salvage of the profile from the damaged document.
		var partial struct {
			Profile Profile `json:"profile"`
		}
		if err := json.Unmarshal(data, &partial); err == nil && partial.Profile.UUID != "" {
			fallback = partial.Profile
		}

		archive = fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		if err := os.Rename(s.path, archive); err != nil {
			return "", fmt.Errorf("failed to archive corrupt ledger: %w", err)
		}
	}

	if err := s.write(&Ledger{Profile: fallback, Installs: []InstallEvent{}, Removes: []RemoveEvent{}}); err != nil {
		return archive, err
	}
	return archive, nil
}

// mutate performs one locked read-modify-write cycle. The rename in write
// is the sole commit point: a crash at any earlier step leaves the previous
// ledger intact.
func (s *Store) mutate(fn func(*Ledger)) error {
	if err := s.lock.Acquire(); err != nil {
		return fmt.Errorf("failed to lock ledger: %w", err)
	}
	defer s.lock.Release()

	l, err := s.Load()
	if err != nil {
		return err
	}
	fn(l)
	return s.write(l)
}

// write marshals the ledger to a temp file in the same directory and
// atomically renames it over the canonical path.
func (s *Store) write(l *Ledger) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".analytics-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp ledger: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp ledger: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to commit ledger: %w", err)
	}
	return nil
}
