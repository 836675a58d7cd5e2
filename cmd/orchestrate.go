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

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/pterm/pterm"

	"wsu.dev/wsu/internal/pm"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
	"wsu.dev/wsu/supervisor"
	"wsu.dev/wsu/workspace"
)

// loadWorkspace discovers the workspace starting at root and reports a
// workspace-not-detected error the way every verb expects to see it.
func loadWorkspace(root string) (*workspace.Info, error) {
	fsys := platform.NewOSFileSystem()
	return workspace.Load(root, fsys)
}

// selectPackages applies the --filter glob, then partitions the result by
// whether the named script is present, warning about (and dropping) any
// package that doesn't have it. An empty survivor set is a no-target error.
func selectPackages(ws *workspace.Info, filter, script string) ([]*workspace.PackageInfo, error) {
	filtered, err := workspace.FilterByGlob(ws.Packages, filter)
	if err != nil {
		return nil, wsuerr.Wrap(wsuerr.NoTarget, "evaluating --filter", err)
	}

	valid, invalid := workspace.PartitionByScript(filtered, script)
	if len(invalid) > 0 {
		names := make([]string, len(invalid))
		for i, p := range invalid {
			names[i] = p.Name
		}
		pterm.Warning.Printf("skipping packages without a %q script: %s\n", script, strings.Join(names, ", "))
	}

	if len(valid) == 0 {
		msg := fmt.Sprintf("no package in the selection has a %q script", script)
		if suggestion, ok := suggestScript(filtered, script); ok {
			msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
		}
		return nil, wsuerr.New(wsuerr.NoTarget, msg)
	}
	return valid, nil
}

// suggestScript finds the script name, among every script defined across
// pkgs, closest to the one the user typed, for a "did you mean" hint.
func suggestScript(pkgs []*workspace.PackageInfo, script string) (string, bool) {
	best := ""
	bestDist := -1
	seen := map[string]bool{}
	for _, p := range pkgs {
		for name := range p.Scripts {
			if seen[name] {
				continue
			}
			seen[name] = true
			dist := levenshtein.Distance(script, name, nil)
			if bestDist == -1 || dist < bestDist {
				bestDist = dist
				best = name
			}
		}
	}
	if best == "" || bestDist > 3 {
		return "", false
	}
	return best, true
}

// tasksFor builds one supervisor.Task per package, invoking script through
// the workspace's detected package manager.
func tasksFor(ws *workspace.Info, pkgs []*workspace.PackageInfo, script string) ([]supervisor.Task, error) {
	adapter, ok := pm.Detect(ws.Root, platform.NewOSFileSystem())
	if !ok {
		return nil, wsuerr.New(wsuerr.WorkspaceNotDetected, "no package manager detected for task dispatch")
	}

	tasks := make([]supervisor.Task, len(pkgs))
	for i, p := range pkgs {
		command, args := adapter.RunCommandFor(script)
		tasks[i] = supervisor.Task{
			PackageName: p.Name,
			Command:     command,
			Args:        args,
			Dir:         p.Path,
			Env:         childEnv(),
		}
	}
	return tasks, nil
}

// childEnv forwards the environment variables the spec names as meaningful
// to children, plus FORCE_COLOR so child tool output stays colorized under
// the supervisor's line-multiplexed output.
func childEnv() []string {
	env := append([]string(nil), os.Environ()...)
	env = append(env, "FORCE_COLOR=1")
	return env
}

// summarize prints the end-of-run line every verb ends with and returns the
// process exit code: 0 on full success, 1 if any task failed.
func summarize(results []supervisor.Result, elapsed time.Duration) int {
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	ok := len(results) - failed

	if failed == 0 {
		pterm.Success.Printf("%d package(s) succeeded in %s\n", ok, elapsed.Round(time.Millisecond))
		return 0
	}
	pterm.Error.Printf("%d succeeded, %d failed, in %s\n", ok, failed, elapsed.Round(time.Millisecond))
	return 1
}

// reportFatal prints err using its wsuerr.Kind if known and exits with a
// non-zero status, per spec.md §7's exit-code policy.
func reportFatal(err error) {
	if kind, ok := wsuerr.KindOf(err); ok {
		pterm.Error.Printf("%s: %v\n", kind, err)
	} else {
		pterm.Error.Printf("%v\n", err)
	}
	os.Exit(1)
}
