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
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/topo"

	"wsu.dev/wsu/internal/wsuerr"
)

// TopoSort returns the workspace packages ordered so that every package
// appears after all of its workspace dependencies. Ties are broken by name
// so the result is deterministic across runs with the same graph.
//
// gonum's topo.Sort is used first as a cheap cycle probe (it reports
// topo.Unorderable the moment the graph is not a DAG); the deterministic
// ordering itself is produced by a Kahn pass over the package's own
// dependency maps so tie-breaking is name-stable rather than whatever
// internal node order gonum happens to iterate.
func (gr *Graph) TopoSort() ([]string, error) {
	if _, err := topo.Sort(gr.g); err != nil {
		return nil, gr.diagnoseCycle()
	}
	return gr.kahn()
}

func (gr *Graph) kahn() ([]string, error) {
	remaining := make(map[string]map[string]struct{}, len(gr.dependencies))
	for name, deps := range gr.dependencies {
		remaining[name] = make(map[string]struct{}, len(deps))
		for d := range deps {
			remaining[name][d] = struct{}{}
		}
	}

	var order []string
	for len(order) < len(gr.names) {
		var ready []string
		for name, deps := range remaining {
			if len(deps) == 0 {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			return nil, gr.diagnoseCycle()
		}
		sort.Strings(ready)
		for _, name := range ready {
			order = append(order, name)
			delete(remaining, name)
		}
		for _, deps := range remaining {
			for _, name := range ready {
				delete(deps, name)
			}
		}
	}
	return order, nil
}

// diagnoseCycle runs a DFS over the graph to report every concrete cycle as
// a list of names, first-encountered traversal order.
func (gr *Graph) diagnoseCycle() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(gr.names))
	var stack []string
	var cycles [][]string

	names := gr.Names()

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		stack = append(stack, name)
		for _, dep := range gr.Dependencies(name) {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				cycle := extractCycle(stack, dep)
				cycles = append(cycles, cycle)
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
	}

	for _, name := range names {
		if color[name] == white {
			visit(name)
		}
	}

	if len(cycles) == 0 {
		return wsuerr.New(wsuerr.DependencyCycle, "cycle detected but could not be isolated")
	}

	lines := make([]string, len(cycles))
	for i, c := range cycles {
		lines[i] = strings.Join(c, " -> ")
	}
	return wsuerr.New(wsuerr.DependencyCycle, strings.Join(lines, "; "))
}

func extractCycle(stack []string, target string) []string {
	for i, name := range stack {
		if name == target {
			cycle := append([]string(nil), stack[i:]...)
			return append(cycle, target)
		}
	}
	return []string{target, target}
}

// Batches derives the batched execution plan: package P enters the lowest
// batch index k such that every workspace dependency of P already belongs
// to a batch j < k. Within a batch, relative topological order is
// preserved.
func (gr *Graph) Batches() ([][]string, error) {
	order, err := gr.TopoSort()
	if err != nil {
		return nil, err
	}

	batchOf := make(map[string]int, len(order))
	var batches [][]string

	for _, name := range order {
		maxDepBatch := -1
		for _, dep := range gr.Dependencies(name) {
			if b, ok := batchOf[dep]; ok && b > maxDepBatch {
				maxDepBatch = b
			}
		}
		k := maxDepBatch + 1
		batchOf[name] = k
		for len(batches) <= k {
			batches = append(batches, nil)
		}
		batches[k] = append(batches[k], name)
	}

	return batches, nil
}

// FilterWithClosure closes targets under the dependencies relation: the
// result is targets plus, recursively, every workspace dependency reached.
// Closing an already-closed set is a no-op (idempotent).
func (gr *Graph) FilterWithClosure(targets []string) []string {
	closed := make(map[string]struct{}, len(targets))
	var stack []string
	for _, t := range targets {
		if _, ok := gr.dependencies[t]; !ok {
			continue
		}
		if _, seen := closed[t]; !seen {
			closed[t] = struct{}{}
			stack = append(stack, t)
		}
	}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range gr.Dependencies(name) {
			if _, seen := closed[dep]; !seen {
				closed[dep] = struct{}{}
				stack = append(stack, dep)
			}
		}
	}
	return sortedKeys(closed)
}
