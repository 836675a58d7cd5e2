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

package workspace

import "path/filepath"

// FilterByGlob returns the subset of packages whose name matches the given
// shell-style glob ("*", "?", "[...]"). An empty pattern matches everything.
func FilterByGlob(packages []*PackageInfo, pattern string) ([]*PackageInfo, error) {
	if pattern == "" {
		return packages, nil
	}
	var matched []*PackageInfo
	for _, p := range packages {
		ok, err := filepath.Match(pattern, p.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// PartitionByScript splits packages into those that declare a non-empty
// script and those that do not.
func PartitionByScript(packages []*PackageInfo, script string) (valid, invalid []*PackageInfo) {
	for _, p := range packages {
		if p.HasScript(script) {
			valid = append(valid, p)
		} else {
			invalid = append(invalid, p)
		}
	}
	return valid, invalid
}
