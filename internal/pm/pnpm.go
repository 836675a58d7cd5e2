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

	"gopkg.in/yaml.v3"

	"wsu.dev/wsu/internal/platform"
)

type pnpmWorkspaceYAML struct {
	Packages []string `yaml:"packages"`
}

func readPnpmWorkspaceFile(root string, fsys platform.FileSystem) ([]string, bool, error) {
	data, err := fsys.ReadFile(filepath.Join(root, "pnpm-workspace.yaml"))
	if err != nil {
		return nil, false, nil
	}
	var cfg pnpmWorkspaceYAML
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, true, err
	}
	return cfg.Packages, true, nil
}

type pnpmAdapter struct{}

func (a *pnpmAdapter) Kind() Kind { return PNPM }

func (a *pnpmAdapter) Detect(root string, fsys platform.FileSystem) int {
	score := 0
	if fsys.Exists(filepath.Join(root, a.LockFileName())) {
		score += scoreLockFile
	}
	globs, present, err := readPnpmWorkspaceFile(root, fsys)
	if present {
		score += scoreWorkspaceFile
	}
	if err == nil && len(globs) > 0 {
		score += scoreParsedNonEmpty
	}
	return score
}

func (a *pnpmAdapter) ParseWorkspaceConfig(root string, fsys platform.FileSystem) ([]string, error) {
	globs, _, err := readPnpmWorkspaceFile(root, fsys)
	return globs, err
}

func (a *pnpmAdapter) RunCommandFor(script string) (string, []string) {
	return "pnpm", []string{"run", script}
}

func (a *pnpmAdapter) LockFileName() string { return "pnpm-lock.yaml" }
