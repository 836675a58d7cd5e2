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
	"time"

	"wsu.dev/wsu/depgraph"
	"wsu.dev/wsu/internal/wsuerr"
	"wsu.dev/wsu/workspace"
)

func depNames(pkg *workspace.PackageInfo) []string {
	seen := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		seen[name] = struct{}{}
	}
	for name := range pkg.DevDependencies {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsValid reports whether pkg has a cache entry whose recorded input hash
// matches the freshly recomputed one.
func (m *Manager) IsValid(pkg *workspace.PackageInfo) (bool, error) {
	hash, err := m.InputHash(pkg, depNames(pkg))
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	entry, ok := m.entries[pkg.Name]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return entry.InputHash == hash, nil
}

// Update recomputes pkg's input hash (reusing the FileIndex fast path),
// snapshots its workspace dependency hashes, and atomically persists
// cache.json and files.json, adding pkg to the manifest if absent.
func (m *Manager) Update(pkg *workspace.PackageInfo, duration time.Duration, builtBy string) error {
	deps := depNames(pkg)
	hash, err := m.InputHash(pkg, deps)
	if err != nil {
		return err
	}

	m.mu.Lock()
	depHashes := make(map[string]string, len(deps))
	for _, d := range deps {
		h := MissingSentinel
		if e, ok := m.entries[d]; ok {
			h = e.InputHash
		}
		depHashes[d] = h
	}
	entry := &Entry{
		InputHash:        hash,
		DependencyHashes: depHashes,
		LastBuild:        time.Now(),
		BuildDurationMS:  duration.Milliseconds(),
		BuiltBy:          builtBy,
	}
	m.entries[pkg.Name] = entry
	idx := m.indexes[pkg.Name]
	inManifest := false
	for _, name := range m.manifest.Packages {
		if name == pkg.Name {
			inManifest = true
			break
		}
	}
	if !inManifest {
		m.manifest.Packages = append(m.manifest.Packages, pkg.Name)
		sort.Strings(m.manifest.Packages)
	}
	m.mu.Unlock()

	if err := m.fsys.MkdirAll(packageDir(m.root, pkg.Name), 0755); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, fmt.Sprintf("creating cache dir for %s", pkg.Name), err)
	}

	if err := m.writeEntry(pkg.Name, entry); err != nil {
		return err
	}
	if err := m.writeIndex(pkg.Name, idx); err != nil {
		return err
	}
	if err := m.saveManifest(); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, "saving manifest", err)
	}
	return nil
}

func (m *Manager) writeEntry(name string, entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(packageDir(m.root, name), "cache.json")
	if err := writeAtomic(m.fsys, path, data); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, fmt.Sprintf("writing cache.json for %s", name), err)
	}
	return nil
}

func (m *Manager) writeIndex(name string, idx FileIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(packageDir(m.root, name), "files.json")
	if err := writeAtomic(m.fsys, path, data); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, fmt.Sprintf("writing files.json for %s", name), err)
	}
	return nil
}

// Invalidate removes pkg's cache.json and its manifest entry. files.json
// may remain as a purely advisory speedup for the next hash computation.
func (m *Manager) Invalidate(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, name)
	kept := m.manifest.Packages[:0]
	for _, n := range m.manifest.Packages {
		if n != name {
			kept = append(kept, n)
		}
	}
	m.manifest.Packages = kept

	// Absence of the file is not an error; Remove failures here are
	// advisory only, per the cache-io-error non-fatal policy.
	_ = m.fsys.Remove(filepath.Join(packageDir(m.root, name), "cache.json"))

	if err := m.saveManifest(); err != nil {
		return wsuerr.Wrap(wsuerr.CacheIOError, "saving manifest", err)
	}
	return nil
}

// InvalidateDependents recursively removes the cache entries of every
// workspace package that depends on name, directly or transitively,
// closed under the reverse-edge walk of graph.
func (m *Manager) InvalidateDependents(name string, graph *depgraph.Graph) error {
	visited := make(map[string]struct{})
	var stack []string
	stack = append(stack, graph.Dependents(name)...)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}
		if err := m.Invalidate(n); err != nil {
			return err
		}
		stack = append(stack, graph.Dependents(n)...)
	}
	return nil
}
