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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"wsu.dev/wsu/internal/wsuerr"
	"wsu.dev/wsu/workspace"
)

var excludedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	cacheDirName:   true,
}

// InputHash computes pkg's canonical input hash: the manifest bytes, the
// sorted relative-path:hash pairs of its source set, and the sorted
// dep-name:dep-input-hash pairs of its workspace dependencies (MISSING for
// a dependency with no cache entry). The FileIndex's mtime/size fast path
// is reused and updated as a side effect.
func (m *Manager) InputHash(pkg *workspace.PackageInfo, depNames []string) (string, error) {
	manifestHash := sha256.Sum256(pkg.Manifest)

	sourcePairs, err := m.hashSourceSet(pkg)
	if err != nil {
		return "", wsuerr.Wrap(wsuerr.CacheIOError, fmt.Sprintf("hashing source set for %s", pkg.Name), err)
	}

	m.mu.Lock()
	depPairs := make([]string, 0, len(depNames))
	for _, dep := range depNames {
		hash := MissingSentinel
		if e, ok := m.entries[dep]; ok {
			hash = e.InputHash
		}
		depPairs = append(depPairs, dep+":"+hash)
	}
	m.mu.Unlock()
	sort.Strings(depPairs)

	var b strings.Builder
	b.WriteString(hex.EncodeToString(manifestHash[:]))
	b.WriteByte('\n')
	b.WriteString(strings.Join(sourcePairs, ","))
	b.WriteByte('\n')
	b.WriteString(strings.Join(depPairs, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:]), nil
}

// hashSourceSet walks pkg's directory, excluding node_modules/.git/.wsu and
// VCS-ignored paths, and returns sorted "relpath:hash" pairs.
func (m *Manager) hashSourceSet(pkg *workspace.PackageInfo) ([]string, error) {
	var candidates []string
	err := fs.WalkDir(m.fsys, pkg.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	candidates = m.filterVCSIgnored(pkg.Path, candidates)

	pairs := make([]string, 0, len(candidates))
	for _, abs := range candidates {
		rel, err := filepath.Rel(pkg.Path, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)

		hash, ok := m.fileHash(pkg.Name, rel, abs)
		if !ok {
			continue
		}
		pairs = append(pairs, rel+":"+hash)
	}
	sort.Strings(pairs)
	return pairs, nil
}

// fileHash implements the mtime/size fast path: if the stat matches the
// FileIndex entry, the cached hash is reused; otherwise the file is read
// and hashed, updating the FileIndex. A file that fails to stat contributes
// no hash.
func (m *Manager) fileHash(pkgName, rel, abs string) (string, bool) {
	info, err := m.fsys.Stat(abs)
	if err != nil {
		return "", false
	}

	m.mu.Lock()
	idx, ok := m.indexes[pkgName]
	if !ok {
		idx = FileIndex{}
		m.indexes[pkgName] = idx
	}
	cached, hasCached := idx[rel]
	m.mu.Unlock()

	if hasCached && cached.MTime.Equal(info.ModTime()) && cached.Size == info.Size() {
		return cached.Hash, true
	}

	data, err := m.fsys.ReadFile(abs)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	m.mu.Lock()
	m.indexes[pkgName][rel] = fileStat{MTime: info.ModTime(), Size: info.Size(), Hash: hash}
	m.mu.Unlock()

	return hash, true
}
