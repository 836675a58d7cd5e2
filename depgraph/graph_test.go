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

package depgraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsu.dev/wsu/internal/wsuerr"
	"wsu.dev/wsu/workspace"
)

func pkg(name string, deps ...string) *workspace.PackageInfo {
	d := make(map[string]string, len(deps))
	for _, dep := range deps {
		d[dep] = "workspace:*"
	}
	return &workspace.PackageInfo{Name: name, Dependencies: d}
}

func diamondInfo() *workspace.Info {
	pkgs := []*workspace.PackageInfo{
		pkg("core"),
		pkg("lib1", "core"),
		pkg("lib2", "core"),
		pkg("app", "lib1", "lib2"),
	}
	ws := &workspace.Info{ByName: make(map[string]*workspace.PackageInfo)}
	for _, p := range pkgs {
		ws.Packages = append(ws.Packages, p)
		ws.ByName[p.Name] = p
	}
	return ws
}

func TestTopoSortOrdersDependenciesFirst(t *testing.T) {
	gr := New(diamondInfo())
	order, err := gr.TopoSort()
	require.NoError(t, err)

	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	for _, name := range gr.Names() {
		for _, dep := range gr.Dependencies(name) {
			assert.Lessf(t, index[dep], index[name], "%s must appear after its dependency %s", name, dep)
		}
	}
}

func TestBatchesPlaceDiamondCorrectly(t *testing.T) {
	gr := New(diamondInfo())
	batches, err := gr.Batches()
	require.NoError(t, err)

	if diff := cmp.Diff([][]string{{"core"}, {"lib1", "lib2"}, {"app"}}, batches); diff != "" {
		t.Fatalf("unexpected batches (-want +got):\n%s", diff)
	}
}

func TestBatchesRespectLowestEligibleIndex(t *testing.T) {
	ws := diamondInfo()
	gr := New(ws)
	batches, err := gr.Batches()
	require.NoError(t, err)

	batchOf := make(map[string]int)
	for k, batch := range batches {
		for _, name := range batch {
			batchOf[name] = k
		}
	}
	for _, name := range gr.Names() {
		maxDepBatch := -1
		for _, dep := range gr.Dependencies(name) {
			if batchOf[dep] > maxDepBatch {
				maxDepBatch = batchOf[dep]
			}
		}
		assert.Equal(t, maxDepBatch+1, batchOf[name])
	}
}

func TestCycleDetectionReportsEveryNodeInTheCycle(t *testing.T) {
	ws := diamondInfo()
	// Introduce core -> app, closing the diamond into a cycle.
	ws.ByName["core"].Dependencies["app"] = "workspace:*"

	gr := New(ws)
	_, err := gr.TopoSort()
	require.Error(t, err)

	kind, ok := wsuerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, wsuerr.DependencyCycle, kind)
	for _, name := range []string{"core", "app"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestFilterWithClosureIsIdempotent(t *testing.T) {
	gr := New(diamondInfo())
	once := gr.FilterWithClosure([]string{"app"})
	twice := gr.FilterWithClosure(once)
	assert.Equal(t, once, twice)
	assert.ElementsMatch(t, []string{"app", "lib1", "lib2", "core"}, once)
}

func TestDependentsDependenciesAreInverse(t *testing.T) {
	gr := New(diamondInfo())
	for _, x := range gr.Names() {
		for _, y := range gr.Names() {
			depends := contains(gr.Dependencies(y), x)
			dependent := contains(gr.Dependents(x), y)
			assert.Equal(t, depends, dependent, "dependents(%s) <-> dependencies(%s) mismatch for %s/%s", x, y, x, y)
		}
	}
}

func contains(haystack []string, needle string) bool {
	for _, h := range haystack {
		if h == needle {
			return true
		}
	}
	return false
}

func TestRootsAndLeaves(t *testing.T) {
	gr := New(diamondInfo())
	assert.Equal(t, []string{"core"}, gr.Roots())
	assert.Equal(t, []string{"app"}, gr.Leaves())
}
