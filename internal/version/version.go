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

// Package version holds build-time metadata injected via -ldflags.
package version

// Set at build time via:
//
//	go build -ldflags "-X wsu.dev/wsu/internal/version.Version=... -X wsu.dev/wsu/internal/version.Commit=... -X wsu.dev/wsu/internal/version.Date=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// BuildInfo is the structured form of the same metadata, for --output json.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func GetVersion() string { return Version }

func GetBuildInfo() BuildInfo {
	return BuildInfo{Version: Version, Commit: Commit, Date: Date}
}
