// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrFileTooLarge is returned (wrapped in *FileTooLargeError) by
// CheckFileSize and by the parse helpers for oversized input.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// FileTooLargeError reports input rejected before parsing.
type FileTooLargeError struct {
	Filename string
	Size     int
	Max      int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.Filename, e.Size, e.Max)
}

func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// FormatError prefixes every CUE error in err with filename and the field
// path it concerns:
//
//	config.cue: backend.kind: 2 errors in empty disjunction
//	package.json: invalid JSON ...
//
// Several errors are listed one per indented line. Errors that are not CUE
// errors are wrapped with the filename only.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	lines := make([]string, 0, len(list))
	for _, e := range list {
		msg := e.Error()
		if p := formatPath(cueerrors.Path(e)); p != "" {
			msg = p + ": " + strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, p), ":"))
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filename, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filename, strings.Join(lines, "\n  "))
}

// formatPath renders a CUE selector path with numeric elements as indices:
// ["core", "0", "name"] becomes "core[0].name".
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if _, err := strconv.ParseUint(part, 10, 64); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// CheckFileSize returns a *FileTooLargeError when data is longer than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return &FileTooLargeError{Filename: filename, Size: len(data), Max: maxSize}
	}
	return nil
}
