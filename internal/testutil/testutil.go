// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path"
	"testing"

	"github.com/spf13/afero"
)

// MustSetenv sets key to value and returns a func restoring the previous
// state, unsetting key if it was not set before.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()

	prev, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	return func() {
		var err error
		if had {
			err = os.Setenv(key, prev)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("restoring env %s: %v", key, err)
		}
	}
}

// WriteFiles writes each slash-separated path in files onto fsys, creating
// parent directories as needed.
func WriteFiles(t testing.TB, fsys afero.Fs, files map[string]string) {
	t.Helper()

	for name, content := range files {
		if err := fsys.MkdirAll(path.Dir(name), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}
