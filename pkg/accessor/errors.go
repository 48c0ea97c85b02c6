// SPDX-License-Identifier: MPL-2.0

package accessor

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultMaxSize caps the size of a single fetched file.
const DefaultMaxSize int64 = 5 * 1024 * 1024

var (
	// ErrIsDirectory is returned when a path names a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
	// ErrTooLarge is returned when a file exceeds the backend size limit.
	ErrTooLarge = errors.New("content exceeds size limit")
	// ErrUnexpectedStatus is the sentinel error wrapped by StatusError.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
	// ErrInvalidBaseURL is returned by NewHTTP for unusable base URLs.
	ErrInvalidBaseURL = errors.New("invalid base URL")
	// ErrNilHTTPClient is returned by NewHTTP when WithHTTPClient is given nil.
	ErrNilHTTPClient = errors.New("nil HTTP client")
)

// StatusError is returned by HTTP for non-2xx responses.
// It wraps ErrUnexpectedStatus for errors.Is() compatibility.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface for StatusError.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

// Unwrap returns ErrUnexpectedStatus for errors.Is() compatibility.
func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

func tooLarge(path string, size, limit int64) error {
	return fmt.Errorf("%s: %d bytes (limit %d): %w", path, size, limit, ErrTooLarge)
}

// IsNotExist reports whether err means the path is absent from the backend.
// Directories count as absent since they never hold module content.
func IsNotExist(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrIsDirectory) ||
		errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrFileNotFound) ||
		errors.Is(err, object.ErrDirectoryNotFound)
}
