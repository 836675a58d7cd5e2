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

package supervisor

import (
	"sync"

	"github.com/pterm/pterm"
)

var palette = []pterm.Color{
	pterm.FgCyan,
	pterm.FgMagenta,
	pterm.FgYellow,
	pterm.FgGreen,
	pterm.FgBlue,
	pterm.FgRed,
	pterm.FgLightCyan,
	pterm.FgLightMagenta,
}

// ColorAssigner hands out a color per package name, first-seen order,
// cycling through a fixed palette. The mapping is stable for the lifetime
// of the value it's attached to (one per Supervisor, i.e. per process).
type ColorAssigner struct {
	mu     sync.Mutex
	next   int
	colors map[string]pterm.Color
}

// NewColorAssigner returns an empty, ready-to-use assigner.
func NewColorAssigner() *ColorAssigner {
	return &ColorAssigner{colors: make(map[string]pterm.Color)}
}

// ColorFor returns name's assigned color, assigning the next palette entry
// on first sight.
func (c *ColorAssigner) ColorFor(name string) pterm.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	if color, ok := c.colors[name]; ok {
		return color
	}
	color := palette[c.next%len(palette)]
	c.colors[name] = color
	c.next++
	return color
}
