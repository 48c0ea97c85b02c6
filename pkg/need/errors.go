// SPDX-License-Identifier: MPL-2.0

package need

import (
	"errors"
	"fmt"

	"github.com/invowk/need/pkg/modpath"
)

const (
	// ReasonEmpty rejects the empty name.
	ReasonEmpty InvalidNameReason = "empty"
	// ReasonInvalidCharacters rejects names outside [A-Za-z0-9_~/.-].
	ReasonInvalidCharacters InvalidNameReason = "invalid characters"
	// ReasonLeadingSlash rejects absolute names.
	ReasonLeadingSlash InvalidNameReason = "leading forward slash"
	// ReasonLeadingDot rejects top-level names with a segment starting with ".".
	ReasonLeadingDot InvalidNameReason = "invalid leading dot"
	// ReasonTrailingSlash rejects top-level names ending with "/".
	ReasonTrailingSlash InvalidNameReason = "trailing forward slash"
)

var (
	// ErrInvalidRequest is the sentinel error wrapped by InvalidNameError.
	ErrInvalidRequest = errors.New("invalid module request")
	// ErrDuplicateCore is the sentinel error wrapped by DuplicateCoreError.
	ErrDuplicateCore = errors.New("core module redefinition")
	// ErrManifestParse is the sentinel error wrapped by ManifestError.
	ErrManifestParse = errors.New("malformed manifest")
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("module not found")
	// ErrNilAccessor is returned by New when no accessor is supplied.
	ErrNilAccessor = errors.New("content accessor is required")
)

type (
	// InvalidNameReason names the syntax rule a ModuleName broke.
	InvalidNameReason string

	// InvalidNameError is returned when a requested name fails validation.
	// It wraps ErrInvalidRequest for errors.Is() compatibility.
	InvalidNameError struct {
		Name   ModuleName
		Reason InvalidNameReason
	}

	// DuplicateCoreError is returned when a core name is registered twice.
	// It wraps ErrDuplicateCore for errors.Is() compatibility.
	DuplicateCoreError struct {
		Name ModuleName
	}

	// ManifestError is returned when a directory manifest exists but cannot
	// be parsed. Unlike a failed fetch it aborts the whole resolution.
	ManifestError struct {
		Path  modpath.Path
		Cause error
	}

	// NotFoundError reports a name that could not be resolved from Start.
	// Resolver.Resolve never returns it; Loader and the CLI do, since for them
	// a missing module is fatal.
	NotFoundError struct {
		Start string
		Name  ModuleName
	}
)

// Error implements the error interface for InvalidNameError.
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidRequest for errors.Is() compatibility.
func (e *InvalidNameError) Unwrap() error { return ErrInvalidRequest }

// Error implements the error interface for DuplicateCoreError.
func (e *DuplicateCoreError) Error() string {
	return fmt.Sprintf("core module %q is already registered", e.Name)
}

// Unwrap returns ErrDuplicateCore for errors.Is() compatibility.
func (e *DuplicateCoreError) Unwrap() error { return ErrDuplicateCore }

// Error implements the error interface for ManifestError.
func (e *ManifestError) Error() string {
	return fmt.Sprintf("malformed manifest %s: %v", e.Path, e.Cause)
}

// Unwrap returns both ErrManifestParse and the parse failure.
func (e *ManifestError) Unwrap() []error { return []error{ErrManifestParse, e.Cause} }

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("failed resolving %q from %q", e.Name, e.Start)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
