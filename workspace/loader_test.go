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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
)

func writeJSON(t *testing.T, fsys *platform.TempDirFileSystem, path, content string) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}

func newDiamondWorkspace(t *testing.T) *platform.TempDirFileSystem {
	t.Helper()
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{
		"name": "root",
		"workspaces": ["packages/*"]
	}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)

	writeJSON(t, fsys, "packages/core/package.json", `{
		"name": "core",
		"scripts": {"build": "tsc"}
	}`)
	writeJSON(t, fsys, "packages/lib1/package.json", `{
		"name": "lib1",
		"scripts": {"build": "tsc"},
		"dependencies": {"core": "workspace:*"}
	}`)
	writeJSON(t, fsys, "packages/lib2/package.json", `{
		"name": "lib2",
		"scripts": {"build": "tsc"},
		"dependencies": {"core": "workspace:*"}
	}`)
	writeJSON(t, fsys, "packages/app/package.json", `{
		"name": "app",
		"scripts": {"build": "tsc"},
		"dependencies": {"lib1": "workspace:*", "lib2": "workspace:*"}
	}`)
	return fsys
}

func TestLoadDiscoversDiamondWorkspace(t *testing.T) {
	fsys := newDiamondWorkspace(t)

	info, err := Load(fsys.RealPath("packages/app"), fsys)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(fsys.RealPath(".")), info.Root)
	assert.Len(t, info.Packages, 4)
	assert.Contains(t, info.ByName, "core")
	assert.Contains(t, info.ByName, "app")
	assert.Equal(t, []string{"lib1", "lib2"}, sortedDeps(info.ByName["app"].Dependencies))
}

func sortedDeps(m map[string]string) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)
	writeJSON(t, fsys, "packages/a/package.json", `{"name": "dup"}`)
	writeJSON(t, fsys, "packages/b/package.json", `{"name": "dup"}`)

	_, err = Load(fsys.RealPath("."), fsys)
	require.Error(t, err)
	kind, ok := wsuerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wsuerr.ManifestInvalid, kind)
}

func TestLoadRejectsMissingName(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)
	writeJSON(t, fsys, "packages/noname/package.json", `{"scripts": {"build": "tsc"}}`)

	_, err = Load(fsys.RealPath("."), fsys)
	require.Error(t, err)
	kind, ok := wsuerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wsuerr.ManifestInvalid, kind)
}

func TestLoadRejectsMalformedManifest(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)
	writeJSON(t, fsys, "packages/broken/package.json", `{not json`)

	_, err = Load(fsys.RealPath("."), fsys)
	require.Error(t, err)
	kind, ok := wsuerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wsuerr.ManifestMalformed, kind)
}

func TestLoadIgnoresMatchedDirectoryWithoutManifest(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)
	writeJSON(t, fsys, "packages/real/package.json", `{"name": "real"}`)
	require.NoError(t, fsys.MkdirAll("packages/empty", 0755))

	info, err := Load(fsys.RealPath("."), fsys)
	require.NoError(t, err)
	assert.Len(t, info.Packages, 1)
	assert.Equal(t, "real", info.Packages[0].Name)
}

func TestLoadHonorsNegatedGlobs(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*", "!packages/excluded"]}`)
	writeJSON(t, fsys, "package-lock.json", `{}`)
	writeJSON(t, fsys, "packages/kept/package.json", `{"name": "kept"}`)
	writeJSON(t, fsys, "packages/excluded/package.json", `{"name": "excluded"}`)

	info, err := Load(fsys.RealPath("."), fsys)
	require.NoError(t, err)
	assert.Len(t, info.Packages, 1)
	assert.Equal(t, "kept", info.Packages[0].Name)
}

func TestFilterByGlob(t *testing.T) {
	pkgs := []*PackageInfo{{Name: "app"}, {Name: "app-utils"}, {Name: "core"}}
	matched, err := FilterByGlob(pkgs, "app*")
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestPartitionByScript(t *testing.T) {
	pkgs := []*PackageInfo{
		{Name: "has", Scripts: map[string]string{"build": "tsc"}},
		{Name: "empty", Scripts: map[string]string{"build": ""}},
		{Name: "missing", Scripts: map[string]string{}},
	}
	valid, invalid := PartitionByScript(pkgs, "build")
	require.Len(t, valid, 1)
	require.Len(t, invalid, 2)
	assert.Equal(t, "has", valid[0].Name)
}
