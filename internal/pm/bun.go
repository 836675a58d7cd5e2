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
	"path/filepath"

	"wsu.dev/wsu/internal/platform"
)

// bunAdapter reads the same package.json "workspaces" field as npm; Bun's
// own workspace declaration file, bunfig.toml, does not itself carry a
// workspace glob list.
type bunAdapter struct{}

func (a *bunAdapter) Kind() Kind { return Bun }

func (a *bunAdapter) Detect(root string, fsys platform.FileSystem) int {
	score := 0
	if fsys.Exists(filepath.Join(root, a.LockFileName())) || fsys.Exists(filepath.Join(root, "bun.lockb")) {
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

func (a *bunAdapter) ParseWorkspaceConfig(root string, fsys platform.FileSystem) ([]string, error) {
	globs, _, err := readRootWorkspaces(root, fsys)
	return globs, err
}

func (a *bunAdapter) RunCommandFor(script string) (string, []string) {
	return "bun", []string{"run", script}
}

func (a *bunAdapter) LockFileName() string { return "bun.lock" }
