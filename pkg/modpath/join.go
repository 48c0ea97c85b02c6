// SPDX-License-Identifier: MPL-2.0

package modpath

import "strings"

const (
	// Separator is the only segment separator recognized in module paths.
	Separator = "/"

	currentSegment = "."
	parentSegment  = ".."
)

// Join concatenates all segments with "/" and normalizes the result.
//
// Tokens are processed from the end: "." is dropped and ".." cancels the
// nearest still-pending non-empty token before it. A ".." with nothing left
// to cancel is dropped silently, so Join cannot be used to detect attempts to
// climb above the root. Runs of "/" are collapsed.
//
// Empty tokens are never cancelled, so Join("/proj/a/", "../lib") is
// "/proj/lib" rather than the "/proj/a/lib" a skip of whatever token
// precedes ".." would give.
//
//	Join("a", "./b", "../c") == "a/c"
//	Join("/a", "..") == ""
func Join(segments ...string) Path {
	tokens := strings.Split(strings.Join(segments, Separator), Separator)
	kept := make([]string, 0, len(tokens))

	pending := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tok := tokens[i]; tok {
		case currentSegment:
		case parentSegment:
			pending++
		case "":
			// Empty tokens only carry the leading root marker; they are
			// never cancelled by "..".
			kept = append(kept, tok)
		default:
			if pending > 0 {
				pending--
				continue
			}
			kept = append(kept, tok)
		}
	}

	for l, r := 0, len(kept)-1; l < r; l, r = l+1, r-1 {
		kept[l], kept[r] = kept[r], kept[l]
	}

	return Path(collapseSeparators(strings.Join(kept, Separator)))
}

// collapseSeparators replaces every run of "/" with a single "/".
func collapseSeparators(s string) string {
	if !strings.Contains(s, Separator+Separator) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	prevSlash := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(c)
	}
	return b.String()
}
