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

// Package supervisor spawns per-package child processes, multiplexes their
// output to a prefixed line sink, and drives them under three execution
// disciplines: bounded parallel, sequential fail-fast, and dependency-batched.
package supervisor

import "time"

// Task describes one command to run for one package.
type Task struct {
	PackageName string
	Command     string
	Args        []string
	Dir         string
	Env         []string
}

// Result is the outcome of a single Task.
type Result struct {
	PackageName string
	Command     string
	Success     bool
	ExitCode    int
	Duration    time.Duration
}

// DefaultConcurrency is the worker-pool size used when a verb does not
// override it.
const DefaultConcurrency = 4
