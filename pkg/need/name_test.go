// SPDX-License-Identifier: MPL-2.0

package need

import (
	"errors"
	"testing"
)

func TestModuleName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		value      ModuleName
		wantReason InvalidNameReason
	}{
		{"simple", "lib", ""},
		{"scoped path", "lib/sub/file.js", ""},
		{"all allowed punctuation", "A_b~c-d.e/f", ""},
		{"relative", "./lib", ""},
		{"parent relative", "../lib", ""},
		{"empty", "", ReasonEmpty},
		{"space", "my lib", ReasonInvalidCharacters},
		{"at sign", "@scope/pkg", ReasonInvalidCharacters},
		{"backslash", `lib\x`, ReasonInvalidCharacters},
		{"non-ascii", "bibliothèque", ReasonInvalidCharacters},
		{"invalid utf-8", ModuleName([]byte{0xff, 'a'}), ReasonInvalidCharacters},
		{"leading slash", "/abs", ReasonLeadingSlash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("Validate(%q) unexpected error: %v", tt.value, err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("Validate(%q) error = %v, want ErrInvalidRequest", tt.value, err)
			}
			var nameErr *InvalidNameError
			if !errors.As(err, &nameErr) {
				t.Fatalf("error should be *InvalidNameError, got: %T", err)
			}
			if nameErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", nameErr.Reason, tt.wantReason)
			}
		})
	}
}

func TestModuleName_ValidateTopLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value      ModuleName
		wantReason InvalidNameReason
	}{
		{"lib", ""},
		{"lib/sub", ""},
		{"lib.js", ""},
		{"lib/sub.v2/x", ""},
		{".", ReasonLeadingDot},
		{"..", ReasonLeadingDot},
		{".hidden", ReasonLeadingDot},
		{"lib/./x", ReasonLeadingDot},
		{"lib/../x", ReasonLeadingDot},
		{"lib/.x", ReasonLeadingDot},
		{"pkg/", ReasonTrailingSlash},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()

			err := tt.value.ValidateTopLevel()
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("ValidateTopLevel(%q) unexpected error: %v", tt.value, err)
				}
				return
			}
			var nameErr *InvalidNameError
			if !errors.As(err, &nameErr) || nameErr.Reason != tt.wantReason {
				t.Errorf("ValidateTopLevel(%q) error = %v, want reason %q", tt.value, err, tt.wantReason)
			}
		})
	}
}

func TestModuleName_IsRelative(t *testing.T) {
	t.Parallel()

	tests := map[ModuleName]bool{
		"./x":  true,
		"../x": true,
		"./":   true,
		".":    false,
		"..":   false,
		".x":   false,
		"x/./": false,
		"...":  false,
	}
	for name, want := range tests {
		if got := name.IsRelative(); got != want {
			t.Errorf("ModuleName(%q).IsRelative() = %v, want %v", name, got, want)
		}
	}
}
