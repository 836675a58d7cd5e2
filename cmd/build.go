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
	"context"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wsu.dev/wsu/cache"
	"wsu.dev/wsu/depgraph"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/internal/wsuerr"
	"wsu.dev/wsu/supervisor"
	"wsu.dev/wsu/workspace"
)

const buildScript = "build"

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build packages in dependency order, skipping unchanged ones",
	Long: `build loads the workspace, restricts it to --filter, closes that
selection under the dependency relation so every workspace dependency of a
selected package is built with it, then skips any package whose content-addressed input
hash still matches its cache entry. The remaining packages run in
dependency-ordered batches; each successful build updates the cache and
invalidates its dependents.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("filter", "", "glob restricting the package name set")
	buildCmd.Flags().Int("concurrency", supervisor.DefaultConcurrency, "maximum simultaneously running tasks per batch")
	buildCmd.Flags().Bool("no-skip-unchanged", false, "rebuild every selected package regardless of cache state")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	root, err := workspaceRoot(cfg)
	if err != nil {
		return err
	}

	filter, _ := cmd.Flags().GetString("filter")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	noSkip, _ := cmd.Flags().GetBool("no-skip-unchanged")

	ws, err := loadWorkspace(root)
	if err != nil {
		reportFatal(err)
	}

	gr := depgraph.New(ws)
	if _, err := gr.TopoSort(); err != nil {
		reportFatal(err)
	}

	selected, err := workspace.FilterByGlob(ws.Packages, filter)
	if err != nil {
		reportFatal(err)
	}
	if len(selected) == 0 {
		reportFatal(wsuerr.New(wsuerr.NoTarget, "no package matches --filter"))
	}

	names := make([]string, len(selected))
	for i, p := range selected {
		names[i] = p.Name
	}
	closure := gr.FilterWithClosure(names)

	closurePkgs := make([]*workspace.PackageInfo, 0, len(closure))
	for _, name := range closure {
		closurePkgs = append(closurePkgs, ws.ByName[name])
	}
	toBuild, skippedNoScript := workspace.PartitionByScript(closurePkgs, buildScript)
	if len(skippedNoScript) > 0 {
		skippedNames := make([]string, len(skippedNoScript))
		for i, p := range skippedNoScript {
			skippedNames[i] = p.Name
		}
		pterm.Warning.Printf("skipping packages without a %q script: %s\n", buildScript, strings.Join(skippedNames, ", "))
	}
	if len(toBuild) == 0 {
		reportFatal(wsuerr.New(wsuerr.NoTarget, "no package in the selection has a \"build\" script"))
	}

	mgr, err := cache.Open(ws.Root, platform.NewOSFileSystem())
	if err != nil {
		reportFatal(err)
	}

	if !noSkip {
		toBuild = skipCacheValid(mgr, toBuild)
	}
	if len(toBuild) == 0 {
		pterm.Success.Println("nothing to build: every selected package is already cached")
		return nil
	}

	buildNames := make(map[string]bool, len(toBuild))
	for _, p := range toBuild {
		buildNames[p.Name] = true
	}

	batchNames, err := gr.Batches()
	if err != nil {
		reportFatal(err)
	}

	var batches [][]supervisor.Task
	for _, batch := range batchNames {
		var tasks []supervisor.Task
		for _, name := range batch {
			if !buildNames[name] {
				continue
			}
			pkg := ws.ByName[name]
			t, err := tasksFor(ws, []*workspace.PackageInfo{pkg}, buildScript)
			if err != nil {
				reportFatal(err)
			}
			tasks = append(tasks, t...)
		}
		if len(tasks) > 0 {
			batches = append(batches, tasks)
		}
	}

	sup := supervisor.New()
	start := time.Now()
	results := sup.Batched(context.Background(), batches, concurrency)

	for _, r := range results {
		if !r.Success {
			continue
		}
		pkg := ws.ByName[r.PackageName]
		if err := mgr.Update(pkg, r.Duration, pkg.Name); err != nil {
			pterm.Warning.Printf("cache update failed for %s: %v\n", pkg.Name, err)
			continue
		}
		if err := mgr.InvalidateDependents(pkg.Name, gr); err != nil {
			pterm.Warning.Printf("cache invalidation failed for %s: %v\n", pkg.Name, err)
		}
	}

	if code := summarize(results, time.Since(start)); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// skipCacheValid drops from pkgs every package whose cache entry is still
// valid, reporting the count skipped.
func skipCacheValid(mgr *cache.Manager, pkgs []*workspace.PackageInfo) []*workspace.PackageInfo {
	var toBuild []*workspace.PackageInfo
	skipped := 0
	for _, p := range pkgs {
		valid, err := mgr.IsValid(p)
		if err == nil && valid {
			skipped++
			continue
		}
		toBuild = append(toBuild, p)
	}
	if skipped > 0 {
		pterm.Info.Printf("%d package(s) unchanged, skipping\n", skipped)
	}
	return toBuild
}
