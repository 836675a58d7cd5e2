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

// Package pm detects which JavaScript package manager governs a workspace
// root and adapts its workspace-globs and run-script conventions to a single
// interface. Three adapters ship: npm, pnpm and Bun.
package pm

import (
	"wsu.dev/wsu/internal/platform"
)

// Kind identifies a supported package manager.
type Kind string

const (
	NPM  Kind = "npm"
	PNPM Kind = "pnpm"
	Bun  Kind = "bun"
)

// Adapter answers the three questions the workspace loader needs of a
// package manager: is it active here, what are its workspace globs, and how
// does it invoke a named script.
type Adapter interface {
	Kind() Kind

	// Detect scores how confident the adapter is that it governs root.
	// Points are awarded for the presence of its lock file, its native
	// workspace declaration file, and a successfully parsed declaration.
	Detect(root string, fsys platform.FileSystem) int

	// ParseWorkspaceConfig returns the raw glob patterns (including any
	// leading "!" negation) declared for this workspace. An adapter with
	// no workspace declaration returns a nil slice and no error.
	ParseWorkspaceConfig(root string, fsys platform.FileSystem) ([]string, error)

	// RunCommandFor returns the command and arguments that invoke the
	// given package.json script under this package manager.
	RunCommandFor(script string) (command string, args []string)

	// LockFileName returns this package manager's lock file name.
	LockFileName() string
}

// Adapters lists the built-in adapters in fixed preference order. Order
// matters: it is the tie-breaker when two adapters report equal confidence.
func Adapters() []Adapter {
	return []Adapter{
		&npmAdapter{},
		&pnpmAdapter{},
		&bunAdapter{},
	}
}

const (
	scoreLockFile       = 2
	scoreWorkspaceFile  = 2
	scoreParsedNonEmpty = 1
)

// Detect probes every adapter in Adapters, in order, and returns the
// highest-scoring one. A tie is broken by declaration order. If every
// adapter scores zero, ok is false.
func Detect(root string, fsys platform.FileSystem) (Adapter, bool) {
	var best Adapter
	bestScore := -1
	for _, a := range Adapters() {
		score := a.Detect(root, fsys)
		if score > bestScore {
			best = a
			bestScore = score
		}
	}
	if bestScore <= 0 {
		return nil, false
	}
	return best, true
}
