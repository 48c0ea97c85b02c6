// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces the platform config directory when non-empty.
// Tests set it so that a developer's own ~/.config/need/config.cue never
// leaks into a run.
var configDirOverride string

// SetConfigDirOverride makes ConfigDir return dir until Reset is called.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset restores the platform config directory.
func Reset() {
	SetConfigDirOverride("")
}
