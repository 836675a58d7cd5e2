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

// Package depgraph builds the workspace-internal dependency graph and
// derives topological orderings, cycle diagnostics, and dependency-ordered
// execution batches from it.
package depgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"wsu.dev/wsu/workspace"
)

// Graph is the workspace's dependency graph: nodes are package names, edges
// point from a package to the workspace dependencies it declares.
type Graph struct {
	ids   map[string]int64
	names map[int64]string
	g     *simple.DirectedGraph

	dependencies map[string]map[string]struct{}
	dependents   map[string]map[string]struct{}
}

// New builds the dependency graph for ws. An edge P -> N is added only when
// N both appears in P's dependencies or devDependencies and is itself a
// workspace member; external dependencies are ignored.
func New(ws *workspace.Info) *Graph {
	gr := &Graph{
		ids:          make(map[string]int64),
		names:        make(map[int64]string),
		g:            simple.NewDirectedGraph(),
		dependencies: make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
	}

	var nextID int64
	for _, pkg := range ws.Packages {
		gr.ids[pkg.Name] = nextID
		gr.names[nextID] = pkg.Name
		gr.g.AddNode(simple.Node(nextID))
		gr.dependencies[pkg.Name] = make(map[string]struct{})
		gr.dependents[pkg.Name] = make(map[string]struct{})
		nextID++
	}

	for _, pkg := range ws.Packages {
		for dep := range allDeps(pkg) {
			if _, ok := ws.ByName[dep]; !ok {
				continue
			}
			if dep == pkg.Name {
				continue
			}
			gr.addEdge(pkg.Name, dep)
		}
	}

	return gr
}

func allDeps(pkg *workspace.PackageInfo) map[string]struct{} {
	out := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		out[name] = struct{}{}
	}
	for name := range pkg.DevDependencies {
		out[name] = struct{}{}
	}
	return out
}

func (gr *Graph) addEdge(from, to string) {
	if _, exists := gr.dependencies[from][to]; exists {
		return
	}
	gr.dependencies[from][to] = struct{}{}
	gr.dependents[to][from] = struct{}{}
	gr.g.SetEdge(gr.g.NewEdge(simple.Node(gr.ids[from]), simple.Node(gr.ids[to])))
}

// Dependencies returns the sorted names that name directly depends on.
func (gr *Graph) Dependencies(name string) []string {
	return sortedKeys(gr.dependencies[name])
}

// Dependents returns the sorted names that directly depend on name.
func (gr *Graph) Dependents(name string) []string {
	return sortedKeys(gr.dependents[name])
}

// Roots returns packages with no dependencies.
func (gr *Graph) Roots() []string {
	var out []string
	for name, deps := range gr.dependencies {
		if len(deps) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Leaves returns packages with no dependents.
func (gr *Graph) Leaves() []string {
	var out []string
	for name, deps := range gr.dependents {
		if len(deps) == 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Names returns every package name in the graph, sorted.
func (gr *Graph) Names() []string {
	out := make([]string, 0, len(gr.ids))
	for name := range gr.ids {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
