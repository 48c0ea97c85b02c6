// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/need/pkg/need"
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check <name>",
		Short: "Validate a module name and report its kind",
		Long: `Validate a module name without resolving it.

Prints "relative" or "top-level". Malformed names exit with status 2 and
the rule they break.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := need.ModuleName(args[0])
			if err := checkName(name); err != nil {
				return err
			}
			kind := "top-level"
			if name.IsRelative() {
				kind = "relative"
			}
			_, err := fmt.Fprintln(app.stdout, kind)
			return err
		},
	}
}
