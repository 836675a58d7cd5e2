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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"wsu.dev/wsu/supervisor"
)

const devScript = "dev"

// devShutdownGrace is how long terminate-all waits for a child's process
// group to exit on its own before force-killing it, per spec.md §5.
const devShutdownGrace = 5 * time.Second

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Run the dev script across the workspace until interrupted",
	Long: `dev starts the "dev" script of every selected package that has one
(warning about and skipping those that do not) in parallel, and installs SIGINT/SIGTERM handlers that gracefully
terminate every child's process group before exiting.`,
	RunE: runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)
	devCmd.Flags().String("filter", "", "glob restricting the package name set")
	devCmd.Flags().Int("concurrency", supervisor.DefaultConcurrency, "maximum simultaneously running dev processes")
}

func runDev(cmd *cobra.Command, args []string) error {
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

	ws, err := loadWorkspace(root)
	if err != nil {
		reportFatal(err)
	}

	pkgs, err := selectPackages(ws, filter, devScript)
	if err != nil {
		reportFatal(err)
	}

	tasks, err := tasksFor(ws, pkgs, devScript)
	if err != nil {
		reportFatal(err)
	}

	sup := supervisor.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	go func() {
		sup.Parallel(ctx, tasks, concurrency)
		close(done)
	}()

	select {
	case <-sigChan:
		pterm.Info.Println("shutting down dev processes...")
		sup.TerminateAll(syscall.SIGTERM, devShutdownGrace)
		cancel()
		<-done
	case <-done:
	}

	os.Exit(0)
	return nil
}
