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

	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
)

// FindRoot searches upward from startPath for the workspace root: the
// nearest directory (startPath included) declaring either a
// package-manager-native workspace file (pnpm-workspace.yaml) or a
// package.json with a non-empty "workspaces" field. A directory carrying
// only a VCS marker (.git) with no workspace metadata is treated as a hard
// boundary: the search stops there and returns that directory, so it never
// crosses a submodule into an unrelated parent workspace.
func FindRoot(startPath string, fsys platform.FileSystem) (string, error) {
	absPath, err := filepath.Abs(startPath)
	if err != nil {
		return "", wsuerr.Wrap(wsuerr.WorkspaceNotDetected, "resolving start path", err)
	}
	if info, err := fsys.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}

	current := absPath
	checked := make(map[string]bool)

	for !checked[current] {
		checked[current] = true

		hasVCS := fsys.Exists(filepath.Join(current, ".git"))
		hasMeta := hasWorkspaceMetadata(current, fsys)

		if hasVCS && !hasMeta {
			return current, nil
		}
		if hasMeta {
			return current, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", wsuerr.New(wsuerr.WorkspaceNotDetected,
		fmt.Sprintf("no workspace root found above %s", absPath))
}

func hasWorkspaceMetadata(dir string, fsys platform.FileSystem) bool {
	if fsys.Exists(filepath.Join(dir, "pnpm-workspace.yaml")) {
		return true
	}
	data, err := fsys.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var pkg struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	return len(pkg.Workspaces) > 0 && string(pkg.Workspaces) != "null"
}
