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

package pm

import (
	"encoding/json"
	"path/filepath"

	"wsu.dev/wsu/internal/platform"
)

// rootManifestWorkspaces is the subset of package.json every adapter needs
// to read the npm-style "workspaces" field.
type rootManifestWorkspaces struct {
	Workspaces json.RawMessage `json:"workspaces"`
}

// parseWorkspacesField normalizes package.json's "workspaces" field, which
// may be either a bare array of globs or an object with a "packages" array.
func parseWorkspacesField(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var asArray []string
	if err := json.Unmarshal(raw, &asArray); err == nil {
		return asArray, nil
	}
	var asObject struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, err
	}
	return asObject.Packages, nil
}

func readRootWorkspaces(root string, fsys platform.FileSystem) ([]string, bool, error) {
	data, err := fsys.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, false, nil
	}
	var manifest rootManifestWorkspaces
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, true, err
	}
	globs, err := parseWorkspacesField(manifest.Workspaces)
	if err != nil {
		return nil, true, err
	}
	return globs, true, nil
}

type npmAdapter struct{}

func (a *npmAdapter) Kind() Kind { return NPM }

func (a *npmAdapter) Detect(root string, fsys platform.FileSystem) int {
	score := 0
	if fsys.Exists(filepath.Join(root, a.LockFileName())) {
		score += scoreLockFile
	}
	globs, present, err := readRootWorkspaces(root, fsys)
	if present {
		score += scoreWorkspaceFile
	}
	if err == nil && len(globs) > 0 {
		score += scoreParsedNonEmpty
	}
	return score
}

func (a *npmAdapter) ParseWorkspaceConfig(root string, fsys platform.FileSystem) ([]string, error) {
	globs, _, err := readRootWorkspaces(root, fsys)
	return globs, err
}

func (a *npmAdapter) RunCommandFor(script string) (string, []string) {
	return "npm", []string{"run", script}
}

func (a *npmAdapter) LockFileName() string { return "package-lock.json" }
