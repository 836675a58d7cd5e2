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
	"time"

	"github.com/spf13/cobra"

	"wsu.dev/wsu/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a package.json script across the workspace",
	Long: `run loads the workspace, restricts it to packages matching --filter,
drops any package missing the named script (warning about each), and
dispatches the rest in parallel (or sequentially with --sequential).`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("filter", "", "glob restricting the package name set")
	runCmd.Flags().Int("concurrency", supervisor.DefaultConcurrency, "maximum simultaneously running tasks")
	runCmd.Flags().Bool("sequential", false, "run tasks one at a time, stopping at the first failure")
}

func runRun(cmd *cobra.Command, args []string) error {
	script := args[0]
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
	sequential, _ := cmd.Flags().GetBool("sequential")

	ws, err := loadWorkspace(root)
	if err != nil {
		reportFatal(err)
	}

	pkgs, err := selectPackages(ws, filter, script)
	if err != nil {
		reportFatal(err)
	}

	tasks, err := tasksFor(ws, pkgs, script)
	if err != nil {
		reportFatal(err)
	}

	sup := supervisor.New()
	start := time.Now()

	var results []supervisor.Result
	if sequential {
		results = sup.Sequential(context.Background(), tasks)
	} else {
		results = sup.Parallel(context.Background(), tasks, concurrency)
	}

	if code := summarize(results, time.Since(start)); code != 0 {
		return &exitError{code: code}
	}
	return nil
}
