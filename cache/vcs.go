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

package cache

import (
	"bufio"
	"bytes"
	"os/exec"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"wsu.dev/wsu/internal/logging"
)

const vcsIgnoreBatchSize = 50

// filterVCSIgnored drops any path the workspace's VCS treats as ignored.
// A local .gitignore parse (go-gitignore) runs first as a cheap pre-filter
// to shrink what has to be shelled out; "git check-ignore" remains the
// authoritative check, invoked in batches to amortize process-spawn cost.
// If git itself is unavailable (not a VCS checkout), the unfiltered set,
// minus whatever the local pre-filter already dropped, is used.
func (m *Manager) filterVCSIgnored(pkgDir string, paths []string) []string {
	candidates := paths
	if matcher, err := gitignore.CompileIgnoreFile(filepath.Join(m.root, ".gitignore")); err == nil {
		var kept []string
		for _, p := range candidates {
			rel, err := filepath.Rel(m.root, p)
			if err != nil || !matcher.MatchesPath(rel) {
				kept = append(kept, p)
			}
		}
		candidates = kept
	}

	ignored, ok := m.gitCheckIgnore(candidates)
	if !ok {
		return candidates
	}

	var kept []string
	for _, p := range candidates {
		if !ignored[p] {
			kept = append(kept, p)
		}
	}
	return kept
}

// gitCheckIgnore asks git which of paths it considers ignored, batching
// requests to vcsIgnoreBatchSize paths per invocation. ok is false if git
// could not be invoked at all (e.g. not a git checkout), in which case the
// caller should treat nothing as ignored.
func (m *Manager) gitCheckIgnore(paths []string) (ignored map[string]bool, ok bool) {
	if len(paths) == 0 {
		return nil, true
	}
	ignored = make(map[string]bool)

	for start := 0; start < len(paths); start += vcsIgnoreBatchSize {
		end := start + vcsIgnoreBatchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[start:end]

		args := append([]string{"check-ignore", "--verbose", "--non-matching", "-z", "--stdin"})
		cmd := exec.Command("git", args...)
		cmd.Dir = m.root
		cmd.Stdin = bytes.NewBufferString(joinNUL(batch))

		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			if _, isExitErr := err.(*exec.ExitError); !isExitErr {
				logging.Warning("git check-ignore unavailable: %v", err)
				return nil, false
			}
		}
		parseCheckIgnoreOutput(out.Bytes(), ignored)
	}

	return ignored, true
}

func joinNUL(paths []string) string {
	var buf bytes.Buffer
	for _, p := range paths {
		buf.WriteString(p)
		buf.WriteByte(0)
	}
	return buf.String()
}

// parseCheckIgnoreOutput reads `git check-ignore --verbose --non-matching -z`
// records: each record is four NUL-terminated fields, source, linenum,
// pattern and pathname. A record whose source/linenum/pattern are empty denotes a
// non-matching (i.e. not ignored) path, per --non-matching.
func parseCheckIgnoreOutput(out []byte, ignored map[string]bool) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Split(splitNUL)
	var fields []string
	for scanner.Scan() {
		fields = append(fields, scanner.Text())
		if len(fields) == 4 {
			source, path := fields[0], fields[3]
			if source != "" {
				ignored[path] = true
			}
			fields = fields[:0]
		}
	}
}

func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
