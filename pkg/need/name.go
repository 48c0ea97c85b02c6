// SPDX-License-Identifier: MPL-2.0

package need

import "strings"

// ModuleName is a requested module identifier, as written by the caller of
// require. Relative names start with "./" or "../"; everything else is a
// top-level name.
type ModuleName string

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// IsRelative reports whether the name starts with "./" or "../".
func (n ModuleName) IsRelative() bool {
	return strings.HasPrefix(string(n), "./") || strings.HasPrefix(string(n), "../")
}

// Validate checks the syntax every requested name must satisfy: non-empty,
// made only of ASCII letters, digits and "_~/.-", and not starting with "/".
func (n ModuleName) Validate() error {
	if n == "" {
		return &InvalidNameError{Name: n, Reason: ReasonEmpty}
	}
	for i := 0; i < len(n); i++ {
		if !isNameByte(n[i]) {
			return &InvalidNameError{Name: n, Reason: ReasonInvalidCharacters}
		}
	}
	if n[0] == '/' {
		return &InvalidNameError{Name: n, Reason: ReasonLeadingSlash}
	}
	return nil
}

// ValidateTopLevel applies the extra rules for non-relative names: no segment
// may start with "." and the name may not end with "/".
func (n ModuleName) ValidateTopLevel() error {
	s := string(n)
	if strings.HasPrefix(s, ".") || strings.Contains(s, "/.") {
		return &InvalidNameError{Name: n, Reason: ReasonLeadingDot}
	}
	if strings.HasSuffix(s, "/") {
		return &InvalidNameError{Name: n, Reason: ReasonTrailingSlash}
	}
	return nil
}

func isNameByte(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '~', c == '/', c == '.', c == '-':
		return true
	default:
		return false
	}
}
