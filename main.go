// SPDX-License-Identifier: MPL-2.0

// Command need resolves module names against a hierarchy of dependency
// directories.
package main

import "github.com/invowk/need/cmd/need"

func main() {
	cmd.Execute()
}
