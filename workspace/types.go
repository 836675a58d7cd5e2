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

// Package workspace discovers a JavaScript monorepo's member packages: it
// finds the workspace root, expands the active package manager's globs,
// and parses each member's manifest into a PackageInfo.
package workspace

import (
	"encoding/json"

	"wsu.dev/wsu/internal/pm"
)

// PackageInfo is a single workspace member.
type PackageInfo struct {
	// Name is globally unique within the workspace.
	Name string
	// Path is the absolute directory containing the member's manifest.
	Path string
	// Scripts maps script name to its shell command string.
	Scripts map[string]string
	// Dependencies and DevDependencies may name non-workspace packages;
	// those are ignored by the dependency graph.
	Dependencies    map[string]string
	DevDependencies map[string]string
	// Manifest is the opaque preserved parse of package.json, kept for
	// diagnostic use.
	Manifest json.RawMessage
}

// HasScript reports whether script is present and non-empty.
func (p *PackageInfo) HasScript(script string) bool {
	cmd, ok := p.Scripts[script]
	return ok && cmd != ""
}

// Info is the immutable result of a single workspace load.
type Info struct {
	Root     string
	Packages []*PackageInfo
	ByName   map[string]*PackageInfo
	Manager  pm.Kind
}

// packageManifest is the subset of package.json the loader reads for every
// member package.
type packageManifest struct {
	Name            string            `json:"name"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}
