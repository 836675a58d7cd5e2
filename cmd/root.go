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

// Package cmd implements wsu's CLI surface: workspace-aware run/build/dev
// orchestration, build output cleanup, and build cache management.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"wsu.dev/wsu/cmd/config"
	"wsu.dev/wsu/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "wsu",
	Short: "Orchestrate builds across an npm/pnpm/bun workspace",
	Long: `wsu discovers a JavaScript package-manager workspace, builds its
inter-package dependency graph, and runs scripts across packages in
dependency order with a content-addressed build cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError lets a verb's RunE report a specific process exit code (e.g. 1
// when some packages failed) without cobra printing a redundant "Error:"
// line, since the failure was already reported via the run summary.
type exitError struct{ code int }

func (e *exitError) Error() string { return "" }

// Execute adds all child commands to the root command and runs it. Called
// once from main().
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if ee, ok := err.(*exitError); ok {
		os.Exit(ee.code)
	}
	pterm.Error.Println(err)
	os.Exit(1)
}

func readConfig() (*config.WsuConfig, error) {
	cfg := &config.WsuConfig{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initConfig() {
	cwd := viper.GetString("cwd")
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			pterm.Fatal.Printf("unable to determine working directory: %v\n", err)
		}
		cwd = wd
		viper.Set("cwd", cwd)
	}

	if cfgFile := viper.GetString("configFile"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("wsu")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(cwd)
		if xdgConfigDir, err := xdg.ConfigFile("wsu"); err == nil {
			viper.AddConfigPath(xdgConfigDir)
		}
	}
	viper.SetEnvPrefix("WSU")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		viper.Set("configFile", viper.ConfigFileUsed())
		logging.Debug("using config file: %s", viper.ConfigFileUsed())
	}

	logging.SetDebugEnabled(viper.GetBool("debug"))
	logging.SetQuietEnabled(viper.GetBool("quiet"))
	if viper.GetBool("ascii") || (!viper.GetBool("unicode") && !term.IsTerminal(int(os.Stdout.Fd()))) {
		pterm.DisableStyling()
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("cwd", "", "directory to start workspace discovery from (default: current directory)")
	rootCmd.PersistentFlags().String("config", "", "path to a wsu.yaml config file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress info and debug logging")
	rootCmd.PersistentFlags().Bool("ascii", false, "disable styled/unicode output")
	rootCmd.PersistentFlags().Bool("unicode", false, "force styled/unicode output even when stdout isn't a terminal")

	_ = viper.BindPFlag("cwd", rootCmd.PersistentFlags().Lookup("cwd"))
	_ = viper.BindPFlag("configFile", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("ascii", rootCmd.PersistentFlags().Lookup("ascii"))
	_ = viper.BindPFlag("unicode", rootCmd.PersistentFlags().Lookup("unicode"))
}

// workspaceRoot resolves the --cwd flag (or process cwd) to an absolute path
// for workspace.Load to start climbing from.
func workspaceRoot(cfg *config.WsuConfig) (string, error) {
	if cfg.Cwd == "" {
		return os.Getwd()
	}
	return filepath.Abs(cfg.Cwd)
}
