// SPDX-License-Identifier: MPL-2.0

package need

import (
	"io"

	"github.com/charmbracelet/log"
)

const (
	// DefaultDependencyDir is the directory searched at every ancestor level.
	DefaultDependencyDir = "node_modules"
	// DefaultManifest is the per-directory metadata file consulted for "main".
	DefaultManifest = "package.json"
	// DefaultExtension is appended when a bare file path is not found.
	DefaultExtension = ".js"
	// DefaultIndexName is the implicit entry file of a directory, without extension.
	DefaultIndexName = "index"
)

type (
	// options holds the construction-time configuration of a Resolver.
	options struct {
		dependencyDir string
		manifest      string
		extension     string
		indexName     string
		logger        *log.Logger
	}

	// Option configures a Resolver.
	Option func(*options)
)

func defaultOptions() options {
	return options{
		dependencyDir: DefaultDependencyDir,
		manifest:      DefaultManifest,
		extension:     DefaultExtension,
		indexName:     DefaultIndexName,
	}
}

// WithDependencyDir sets the dependency directory name. An empty name disables
// the ancestor walk: top-level names then resolve through core entries only.
func WithDependencyDir(name string) Option {
	return func(o *options) {
		o.dependencyDir = name
	}
}

// WithManifest sets the manifest file name. An empty name disables manifest
// lookups so directories always resolve to their index file.
func WithManifest(name string) Option {
	return func(o *options) {
		o.manifest = name
	}
}

// WithExtension sets the source extension, including its leading dot.
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithIndexName sets the implicit directory entry name (without extension).
func WithIndexName(name string) Option {
	return func(o *options) {
		o.indexName = name
	}
}

// WithLogger sets the diagnostic sink. Candidate lookups are logged at debug
// level. The default logger discards everything.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func (o *options) sink() *log.Logger {
	if o.logger != nil {
		return o.logger
	}
	return log.New(io.Discard)
}
