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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsu.dev/wsu/depgraph"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/workspace"
)

// newTestWorkspace lays out a tiny real-disk workspace (lib depends on core)
// so source-set walking and git check-ignore exercise real paths.
func newTestWorkspace(t *testing.T) (*platform.TempDirFileSystem, *workspace.Info) {
	t.Helper()
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	mk := func(rel, content string) {
		full := fsys.RealPath(rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	mk("packages/core/package.json", `{"name":"core"}`)
	mk("packages/core/index.js", `module.exports = 1;`)
	mk("packages/lib/package.json", `{"name":"lib","dependencies":{"core":"workspace:*"}}`)
	mk("packages/lib/index.js", `require("core");`)

	root := fsys.RealPath(".")
	core := &workspace.PackageInfo{
		Name:     "core",
		Path:     fsys.RealPath("packages/core"),
		Manifest: []byte(`{"name":"core"}`),
	}
	lib := &workspace.PackageInfo{
		Name:         "lib",
		Path:         fsys.RealPath("packages/lib"),
		Dependencies: map[string]string{"core": "workspace:*"},
		Manifest:     []byte(`{"name":"lib","dependencies":{"core":"workspace:*"}}`),
	}
	ws := &workspace.Info{
		Root:     root,
		Packages: []*workspace.PackageInfo{core, lib},
		ByName:   map[string]*workspace.PackageInfo{"core": core, "lib": lib},
	}
	return fsys, ws
}

func TestInputHashIsDeterministic(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)

	h1, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)
	h2, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestInputHashChangesOnSourceEdit(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)

	before, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(fsys.RealPath("packages/core/index.js"), []byte(`module.exports = 2;`), 0644))

	after, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestInputHashIgnoresGitignoredFiles(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	require.NoError(t, os.WriteFile(fsys.RealPath(".gitignore"), []byte("packages/core/dist\n"), 0644))

	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)

	before, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(fsys.RealPath("packages/core/dist"), 0755))
	require.NoError(t, os.WriteFile(fsys.RealPath("packages/core/dist/out.js"), []byte(`generated`), 0644))

	after, err := mgr.InputHash(ws.ByName["core"], nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestInputHashIsSensitiveToDependencyHash(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)

	before, err := mgr.InputHash(ws.ByName["lib"], []string{"core"})
	require.NoError(t, err)

	require.NoError(t, mgr.Update(ws.ByName["core"], time.Millisecond, "test"))

	after, err := mgr.InputHash(ws.ByName["lib"], []string{"core"})
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "lib's hash must change once core has a recorded input hash")
}

func TestUpdateThenIsValidRoundTrips(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)

	require.NoError(t, mgr.Update(ws.ByName["core"], 5*time.Millisecond, "wsu"))

	valid, err := mgr.IsValid(ws.ByName["core"])
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestInvalidateRemovesEntryAndManifestRecord(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)
	require.NoError(t, mgr.Update(ws.ByName["core"], time.Millisecond, "wsu"))

	require.NoError(t, mgr.Invalidate("core"))

	assert.NotContains(t, mgr.GetCachedPackages(), "core")
	_, exists := fsys.Stat(filepath.Join(ws.Root, ".wsu", "packages", "core", "cache.json"))
	assert.Error(t, exists)
}

func TestInvalidateDependentsClosesOverReverseEdges(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)
	require.NoError(t, mgr.Update(ws.ByName["core"], time.Millisecond, "wsu"))
	require.NoError(t, mgr.Update(ws.ByName["lib"], time.Millisecond, "wsu"))

	gr := depgraph.New(ws)
	require.NoError(t, mgr.InvalidateDependents("core", gr))

	assert.NotContains(t, mgr.GetCachedPackages(), "lib")
}

func TestClearEmptiesCachedPackagesButKeepsDir(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	mgr, err := Open(ws.Root, fsys)
	require.NoError(t, err)
	require.NoError(t, mgr.Update(ws.ByName["core"], time.Millisecond, "wsu"))

	require.NoError(t, mgr.Clear())

	assert.Empty(t, mgr.GetCachedPackages())
	assert.True(t, fsys.Exists(filepath.Join(ws.Root, ".wsu")))
}

func TestOpenAppendsGitignoreIdempotently(t *testing.T) {
	fsys, ws := newTestWorkspace(t)
	_, err := Open(ws.Root, fsys)
	require.NoError(t, err)
	_, err = Open(ws.Root, fsys)
	require.NoError(t, err)

	data, err := os.ReadFile(fsys.RealPath(".gitignore"))
	require.NoError(t, err)
	count := 0
	for _, line := range splitLines(string(data)) {
		if line == ".wsu/" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
