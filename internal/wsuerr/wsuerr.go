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

// Package wsuerr defines the kinded error type shared by every component,
// so the command layer can map a failure to the right exit code without
// string-matching messages.
package wsuerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the orchestrator must
// distinguish when deciding how to react to a failure.
type Kind string

const (
	WorkspaceNotDetected   Kind = "workspace-not-detected"
	ManifestMalformed      Kind = "manifest-malformed"
	ManifestInvalid        Kind = "manifest-invalid"
	WorkspaceConfigInvalid Kind = "workspace-config-invalid"
	DependencyCycle        Kind = "dependency-cycle"
	NoTarget               Kind = "no-target"
	ProcessFailure         Kind = "process-failure"
	CacheIOError           Kind = "cache-io-error"
)

// Error wraps a Kind with a human message and optional underlying cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error of the given kind around a cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf extracts the Kind of err via errors.As, if err wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
