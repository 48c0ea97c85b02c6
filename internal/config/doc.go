// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is read from the first file found among: the file named by --config,
// <ConfigDir>/config.cue (XDG on Linux, ~/Library/Application Support on macOS,
// %APPDATA% on Windows), and ./need.cue. Every key can be overridden from the
// environment with the NEED_ prefix (NEED_DEPENDENCY_DIR, NEED_BACKEND_KIND, ...).
//
// Files are validated against the embedded CUE schema (config_schema.cue) before
// they reach Viper.
package config
