// SPDX-License-Identifier: MPL-2.0

package need

import (
	"errors"

	"github.com/invowk/need/pkg/cueutil"
)

// manifestMainField is the only manifest field the resolver consults.
const manifestMainField = "main"

var errNotText = errors.New("content is not valid UTF-8 text")

// parseManifest extracts the "main" entry from a manifest module. Documents
// that are not objects, or whose "main" is missing or not a string, report
// hasMain == false. Unparsable documents are a *ManifestError.
func parseManifest(pkg *Module) (entry string, hasMain bool, err error) {
	v, err := cueutil.ExtractJSON([]byte(pkg.Source()), cueutil.WithFilename(pkg.ID().String()))
	if err != nil {
		return "", false, &ManifestError{Path: pkg.ID(), Cause: err}
	}
	entry, hasMain = cueutil.LookupString(v, manifestMainField)
	return entry, hasMain, nil
}
