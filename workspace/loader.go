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

package workspace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"wsu.dev/wsu/internal/pm"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
)

// Load walks upward from startPath to find the workspace root, detects the
// active package manager, expands its workspace globs, and parses every
// surviving member's manifest into an Info.
func Load(startPath string, fsys platform.FileSystem) (*Info, error) {
	root, err := FindRoot(startPath, fsys)
	if err != nil {
		return nil, err
	}

	adapter, ok := pm.Detect(root, fsys)
	if !ok {
		return nil, wsuerr.New(wsuerr.WorkspaceNotDetected,
			fmt.Sprintf("no supported package manager detected at %s", root))
	}

	globs, err := adapter.ParseWorkspaceConfig(root, fsys)
	if err != nil {
		return nil, wsuerr.Wrap(wsuerr.WorkspaceConfigInvalid,
			fmt.Sprintf("%s workspace configuration at %s", adapter.Kind(), root), err)
	}

	dirs, err := expandGlobs(root, globs, fsys)
	if err != nil {
		return nil, wsuerr.Wrap(wsuerr.WorkspaceConfigInvalid, "expanding workspace globs", err)
	}

	info := &Info{
		Root:    root,
		ByName:  make(map[string]*PackageInfo),
		Manager: adapter.Kind(),
	}

	for _, dir := range dirs {
		manifestPath := filepath.Join(dir, "package.json")
		if !fsys.Exists(manifestPath) {
			// A matched directory without a manifest is silently ignored.
			continue
		}
		pkg, err := readPackageInfo(dir, manifestPath, fsys)
		if err != nil {
			return nil, err
		}
		if existing, dup := info.ByName[pkg.Name]; dup {
			return nil, wsuerr.New(wsuerr.ManifestInvalid,
				fmt.Sprintf("duplicate package name %q at %s and %s", pkg.Name, existing.Path, pkg.Path))
		}
		info.ByName[pkg.Name] = pkg
		info.Packages = append(info.Packages, pkg)
	}

	sort.Slice(info.Packages, func(i, j int) bool {
		return info.Packages[i].Name < info.Packages[j].Name
	})

	return info, nil
}

func readPackageInfo(dir, manifestPath string, fsys platform.FileSystem) (*PackageInfo, error) {
	raw, err := fsys.ReadFile(manifestPath)
	if err != nil {
		return nil, wsuerr.Wrap(wsuerr.ManifestMalformed, manifestPath, err)
	}
	var manifest packageManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, wsuerr.Wrap(wsuerr.ManifestMalformed, manifestPath, err)
	}
	if manifest.Name == "" {
		return nil, wsuerr.New(wsuerr.ManifestInvalid, fmt.Sprintf("%s: missing \"name\"", manifestPath))
	}
	return &PackageInfo{
		Name:            manifest.Name,
		Path:            dir,
		Scripts:         manifest.Scripts,
		Dependencies:    manifest.Dependencies,
		DevDependencies: manifest.DevDependencies,
		Manifest:        json.RawMessage(raw),
	}, nil
}

// expandGlobs expands each workspace glob to a set of candidate directories,
// subtracting any glob prefixed with "!" from the positive set. Matches that
// are not directories are dropped: expansion is restricted to directories.
func expandGlobs(root string, globs []string, fsys platform.FileSystem) ([]string, error) {
	positive := make(map[string]struct{})
	negative := make(map[string]struct{})

	for _, g := range globs {
		negate := strings.HasPrefix(g, "!")
		pattern := strings.TrimPrefix(g, "!")
		full := filepath.Join(root, pattern)

		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", g, err)
		}
		target := positive
		if negate {
			target = negative
		}
		for _, m := range matches {
			info, err := fsys.Stat(m)
			if err != nil || !info.IsDir() {
				continue
			}
			target[filepath.Clean(m)] = struct{}{}
		}
	}

	var dirs []string
	for d := range positive {
		if _, excluded := negative[d]; excluded {
			continue
		}
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}
