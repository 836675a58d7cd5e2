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
)

func TestFindRootClimbsToNearestWorkspaceMetadata(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	writeJSON(t, fsys, "package.json", `{"name": "root", "workspaces": ["packages/*"]}`)
	require.NoError(t, fsys.MkdirAll("packages/app", 0755))

	root, err := FindRoot(fsys.RealPath("packages/app"), fsys)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(fsys.RealPath(".")), root)
}

func TestFindRootTreatsBareVCSDirectoryAsHardBoundary(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	require.NoError(t, fsys.MkdirAll("submodule/.git", 0755))
	writeJSON(t, fsys, "submodule/package.json", `{"name": "leaf"}`)

	root, err := FindRoot(fsys.RealPath("submodule"), fsys)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(fsys.RealPath("submodule")), root)
}

func TestFindRootFailsWhenNoMetadataExists(t *testing.T) {
	fsys, err := platform.NewTempDirFileSystem()
	require.NoError(t, err)
	t.Cleanup(func() { _ = fsys.Cleanup() })

	require.NoError(t, fsys.MkdirAll("plain", 0755))

	_, err = FindRoot(fsys.RealPath("plain"), fsys)
	require.Error(t, err)
}
