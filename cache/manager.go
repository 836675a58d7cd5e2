/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/renameio"

	"wsu.dev/wsu/internal/logging"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
)

const cacheDirName = ".wsu"

// Manager owns the in-memory view of a workspace's build cache and mirrors
// it to disk under <root>/.wsu/. Its maps are touched only from the
// orchestrator's own goroutine, never from supervisor worker tasks — see
// the concurrency discipline this carries forward from the distilled spec.
type Manager struct {
	mu       sync.Mutex
	root     string
	fsys     platform.FileSystem
	manifest Manifest
	entries  map[string]*Entry
	indexes  map[string]FileIndex
}

func dir(root string) string              { return filepath.Join(root, cacheDirName) }
func packagesDir(root string) string      { return filepath.Join(dir(root), "packages") }
func packageDir(root, name string) string { return filepath.Join(packagesDir(root), name) }
func manifestPath(root string) string     { return filepath.Join(dir(root), "manifest.json") }

// Open creates .wsu/ if absent, appends it to the root .gitignore
// (idempotently), and loads whatever manifest and per-package entries it
// finds. A corrupt or version-mismatched manifest is silently replaced by
// an empty one rather than treated as fatal — the cache is a speedup, not a
// source of truth.
func Open(root string, fsys platform.FileSystem) (*Manager, error) {
	m := &Manager{
		root:    root,
		fsys:    fsys,
		entries: make(map[string]*Entry),
		indexes: make(map[string]FileIndex),
	}

	if err := fsys.MkdirAll(packagesDir(root), 0755); err != nil {
		return nil, wsuerr.Wrap(wsuerr.CacheIOError, "creating .wsu/packages", err)
	}

	if err := ensureGitignoreEntry(root, fsys); err != nil {
		logging.Warning("could not update .gitignore: %v", err)
	}

	m.manifest = m.loadManifest()
	for _, name := range m.manifest.Packages {
		entry, ok := m.loadEntry(name)
		if !ok {
			continue
		}
		m.entries[name] = entry
		m.indexes[name] = m.loadIndex(name)
	}

	return m, nil
}

func (m *Manager) loadManifest() Manifest {
	raw, err := m.fsys.ReadFile(manifestPath(m.root))
	if err != nil {
		return Manifest{Version: CacheVersion}
	}
	var mf Manifest
	if err := json.Unmarshal(raw, &mf); err != nil || mf.Version != CacheVersion {
		return Manifest{Version: CacheVersion}
	}
	return mf
}

func (m *Manager) loadEntry(name string) (*Entry, bool) {
	raw, err := m.fsys.ReadFile(filepath.Join(packageDir(m.root, name), "cache.json"))
	if err != nil {
		return nil, false
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	return &e, true
}

func (m *Manager) loadIndex(name string) FileIndex {
	raw, err := m.fsys.ReadFile(filepath.Join(packageDir(m.root, name), "files.json"))
	if err != nil {
		return FileIndex{}
	}
	var idx FileIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return FileIndex{}
	}
	return idx
}

func (m *Manager) saveManifest() error {
	data, err := json.MarshalIndent(m.manifest, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(m.fsys, manifestPath(m.root), data)
}

// writeAtomic prefers write-to-temp + rename via renameio when the
// filesystem is the real OS filesystem; any other FileSystem (such as the
// temp-dir test filesystem) falls back to a direct write.
func writeAtomic(fsys platform.FileSystem, path string, data []byte) error {
	if _, ok := fsys.(*platform.OSFileSystem); ok {
		return renameio.WriteFile(path, data, 0644)
	}
	return fsys.WriteFile(path, data, 0644)
}

func ensureGitignoreEntry(root string, fsys platform.FileSystem) error {
	path := filepath.Join(root, ".gitignore")
	existing, err := fsys.ReadFile(path)
	if err != nil {
		existing = nil
	}
	lines := strings.Split(string(existing), "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == cacheDirName || trimmed == cacheDirName+"/" {
			return nil
		}
	}
	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += cacheDirName + "/\n"
	return fsys.WriteFile(path, []byte(content), 0644)
}

// GetCachedPackages returns the names of every package currently present in
// the cache, sorted.
func (m *Manager) GetCachedPackages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for name := range m.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Entry returns the cached entry for name, if any.
func (m *Manager) Entry(name string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Clear removes every per-package directory and empties the manifest. The
// .wsu/ directory itself is retained.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.entries {
		if err := m.removePackageDir(name); err != nil {
			return wsuerr.Wrap(wsuerr.CacheIOError, fmt.Sprintf("clearing %s", name), err)
		}
	}
	m.entries = make(map[string]*Entry)
	m.indexes = make(map[string]FileIndex)
	m.manifest = Manifest{Version: CacheVersion}
	if err := m.saveManifest(); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, "rewriting manifest", err)
	}
	return nil
}

func (m *Manager) removePackageDir(name string) error {
	dir := packageDir(m.root, name)
	for _, f := range []string{"cache.json", "files.json"} {
		_ = m.fsys.Remove(filepath.Join(dir, f))
	}
	_ = m.fsys.Remove(dir)
	return nil
}
