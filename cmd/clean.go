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
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wsu.dev/wsu/cache"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/workspace"
)

// cleanOutputDirs are the conventional build-output directory names removed
// per selected package. clean is a trivial recursive delete, not a script
// dispatch: it has no notion of a package.json "clean" script.
var cleanOutputDirs = []string{"dist", "build"}

var cleanCmd = &cobra.Command{
	Use:   "clean [--filter <glob>]",
	Short: "Remove build output directories across the workspace",
	Long: `clean recursively removes each selected package's conventional
build-output directories (dist/, build/). It has no script of its own;
--cache additionally clears the on-disk build cache in the same
invocation.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().String("filter", "", "glob restricting the package name set")
	cleanCmd.Flags().Bool("cache", false, "also clear the build cache")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}
	root, err := workspaceRoot(cfg)
	if err != nil {
		return err
	}

	filter, _ := cmd.Flags().GetString("filter")
	clearCache, _ := cmd.Flags().GetBool("cache")

	ws, err := loadWorkspace(root)
	if err != nil {
		reportFatal(err)
	}

	selected, err := workspace.FilterByGlob(ws.Packages, filter)
	if err != nil {
		reportFatal(err)
	}

	removed := 0
	for _, p := range selected {
		for _, dir := range cleanOutputDirs {
			path := filepath.Join(p.Path, dir)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := os.RemoveAll(path); err != nil {
				pterm.Warning.Printf("could not remove %s: %v\n", path, err)
				continue
			}
			removed++
			pterm.Debug.Printf("removed %s\n", path)
		}
	}
	pterm.Success.Printf("removed %d build output director(ies) across %d package(s)\n", removed, len(selected))

	if clearCache {
		mgr, err := cache.Open(ws.Root, platform.NewOSFileSystem())
		if err != nil {
			reportFatal(err)
		}
		if err := mgr.Clear(); err != nil {
			reportFatal(err)
		}
		pterm.Success.Println("build cache cleared")
	}

	return nil
}
