// SPDX-License-Identifier: MPL-2.0

package modpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
var ErrInvalidPath = errors.New("invalid module path")

type (
	// Path is a normalized module path as produced by Join.
	// A valid path is non-empty and has no "." or ".." segments.
	Path string

	// InvalidPathError is returned when a Path value is empty or still
	// contains relative segments.
	InvalidPathError struct {
		Value   Path
		Segment string
	}
)

// String returns the string representation of the Path.
func (p Path) String() string { return string(p) }

// Validate returns an error if the Path is empty or not normalized.
func (p Path) Validate() error {
	if p == "" {
		return &InvalidPathError{Value: p}
	}
	for seg := range strings.SplitSeq(string(p), Separator) {
		if seg == currentSegment || seg == parentSegment {
			return &InvalidPathError{Value: p, Segment: seg}
		}
	}
	return nil
}

// IsAbs reports whether the path is rooted at "/".
func (p Path) IsAbs() bool {
	return strings.HasPrefix(string(p), Separator)
}

// Dir returns everything up to and including the final "/".
// A path without any "/" has an empty Dir.
//
//	Path("/proj/lib/index.js").Dir() == "/proj/lib/"
func (p Path) Dir() Path {
	i := strings.LastIndex(string(p), Separator)
	if i < 0 {
		return ""
	}
	return p[:i+1]
}

// Segments returns the non-empty segments of the path in order.
func (p Path) Segments() []string {
	var segs []string
	for seg := range strings.SplitSeq(string(p), Separator) {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// Error implements the error interface for InvalidPathError.
func (e *InvalidPathError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("invalid module path %q: contains %q segment", e.Value, e.Segment)
	}
	return fmt.Sprintf("invalid module path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidPath for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }
