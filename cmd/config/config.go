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

// Package config defines the viper-bound configuration struct shared by
// every verb, loaded from flags, environment, and wsu.yaml.
package config

import "fmt"

// RunConfig holds options shared by run/build/dev. The values are loaded and
// validated, but the verbs take concurrency, sequential mode and the filter
// from their own command-line flags; no verb reads these fields.
type RunConfig struct {
	// Concurrency bounds how many package tasks may execute at once. 0 means
	// the supervisor's default.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// Sequential forces one-task-at-a-time execution, ignoring Concurrency.
	Sequential bool `mapstructure:"sequential" yaml:"sequential"`
	// Filter restricts the target set to packages whose name matches this glob.
	Filter string `mapstructure:"filter" yaml:"filter"`
}

// CacheConfig holds cache-specific options.
type CacheConfig struct {
	// Disabled is loaded from config but not read by any verb; build's
	// --no-skip-unchanged flag is what bypasses cache reads.
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`
}

// WsuConfig is the full configuration surface, unmarshaled from viper.
type WsuConfig struct {
	// Cwd overrides the directory workspace discovery starts from.
	Cwd string `mapstructure:"cwd" yaml:"cwd"`
	// Debug enables debug-level logging.
	Debug bool `mapstructure:"debug" yaml:"debug"`
	// Quiet suppresses info/debug logging.
	Quiet bool `mapstructure:"quiet" yaml:"quiet"`
	// ASCII forces plain-ASCII output instead of pterm's Unicode glyphs.
	ASCII bool `mapstructure:"ascii" yaml:"ascii"`
	// Unicode forces styled/Unicode output back on even when stdout isn't a
	// live terminal (e.g. piped through a Unicode-aware multiplexer).
	// Takes precedence over the TTY auto-detect, but ASCII still wins if both
	// are set.
	Unicode bool `mapstructure:"unicode" yaml:"unicode"`
	// ConfigFile is the resolved path of the config file in use, if any.
	ConfigFile string `mapstructure:"configFile" yaml:"configFile"`

	Run   RunConfig   `mapstructure:"run" yaml:"run"`
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
}

// Clone returns a deep copy, so verb code can mutate a per-invocation config
// (e.g. applying a command-specific --filter) without touching the shared
// viper-bound instance.
func (c *WsuConfig) Clone() *WsuConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Validate reports a malformed configuration before any workspace I/O runs.
func (c *WsuConfig) Validate() error {
	if c.Run.Concurrency < 0 {
		return fmt.Errorf("run.concurrency must not be negative, got %d", c.Run.Concurrency)
	}
	return nil
}
