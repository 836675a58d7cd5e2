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

// Package cache implements the content-addressed build cache under a
// workspace's .wsu/ directory: per-package input hashing with a mtime/size
// fast path, VCS-ignore filtering, dependency-aware invalidation, and
// atomic on-disk persistence.
package cache

import "time"

// CacheVersion is bumped whenever the on-disk schema changes incompatibly.
// A manifest written by a different version is discarded, not migrated.
const CacheVersion = 1

// MissingSentinel is recorded for a workspace dependency that has no cache
// entry of its own, so its absence still participates in the hash.
const MissingSentinel = "MISSING"

// Entry is the persisted cache.json record for one package.
type Entry struct {
	InputHash        string            `json:"inputHash"`
	DependencyHashes map[string]string `json:"dependencyHashes"`
	LastBuild        time.Time         `json:"lastBuild"`
	BuildDurationMS  int64             `json:"buildDuration"`
	BuiltBy          string            `json:"builtBy"`
}

// fileStat is one FileIndex record: the file's recorded (mtime, size) and
// its content hash as of that stat.
type fileStat struct {
	MTime time.Time `json:"mtime"`
	Size  int64     `json:"size"`
	Hash  string    `json:"hash"`
}

// FileIndex maps a POSIX-normalized relative path to its last-known stat and
// hash. It's purely an optimization: a mismatched stat falls back to a full
// content read.
type FileIndex map[string]fileStat

// Manifest is the workspace-wide manifest.json: the source of truth for
// which per-package entries exist on disk.
type Manifest struct {
	Version  int      `json:"version"`
	Packages []string `json:"packages"`
}
