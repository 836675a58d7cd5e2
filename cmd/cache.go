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
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/text/width"

	"wsu.dev/wsu/cache"
	"wsu.dev/wsu/internal/platform"
	"wsu.dev/wsu/workspace"
)

var cacheCmd = &cobra.Command{
	Use:   "cache [status|clear]",
	Short: "Inspect or clear the build cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCache,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
}

func runCache(cmd *cobra.Command, args []string) error {
	sub := "status"
	if len(args) == 1 {
		sub = args[0]
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}
	root, err := workspaceRoot(cfg)
	if err != nil {
		return err
	}

	ws, err := loadWorkspace(root)
	if err != nil {
		reportFatal(err)
	}

	mgr, err := cache.Open(ws.Root, platform.NewOSFileSystem())
	if err != nil {
		reportFatal(err)
	}

	switch sub {
	case "status":
		printCacheStatus(ws.Packages, mgr)
	case "clear":
		if err := mgr.Clear(); err != nil {
			reportFatal(err)
		}
		pterm.Success.Println("build cache cleared")
	default:
		pterm.Error.Printf("unknown cache subcommand %q (want status or clear)\n", sub)
		return &exitError{code: 1}
	}
	return nil
}

// printCacheStatus renders a package/cached/last-build/duration table.
// Package names are padded by display width (via golang.org/x/text/width),
// not byte length, so the columns line up even with full-width glyphs.
func printCacheStatus(pkgs []*workspace.PackageInfo, mgr *cache.Manager) {
	data := pterm.TableData{{"PACKAGE", "CACHED", "LAST BUILD", "DURATION"}}
	for _, p := range pkgs {
		entry, ok := mgr.Entry(p.Name)
		if !ok {
			data = append(data, []string{padName(p.Name), "no", "-", "-"})
			continue
		}
		data = append(data, []string{
			padName(p.Name),
			"yes",
			entry.LastBuild.Format(time.RFC3339),
			fmt.Sprintf("%dms", entry.BuildDurationMS),
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader(true).WithBoxed(false).WithData(data).Srender()
	if err != nil {
		pterm.Error.Printf("rendering cache status table: %v\n", err)
		return
	}
	pterm.Println(out)
}

func padName(name string) string {
	w := 0
	for _, r := range name {
		if width.LookupRune(r).Kind() == width.EastAsianWide || width.LookupRune(r).Kind() == width.EastAsianFullwidth {
			w += 2
		} else {
			w++
		}
	}
	const col = 24
	if w >= col {
		return name
	}
	padding := ""
	for i := 0; i < col-w; i++ {
		padding += " "
	}
	return name + padding
}
