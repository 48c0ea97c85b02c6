// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/need/pkg/modpath"
)

func newJoinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "join <segment>...",
		Short: "Join and normalize module path segments",
		Long: `Join path segments with "/" and normalize the result.

"." segments are dropped, each ".." cancels the nearest preceding segment,
runs of "/" collapse, and a trailing "/" is kept.`,
		Example: `  need join /app/src ../lib index.js   # /app/lib/index.js
  need join a/b/ ./c/                  # a/b/c/`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return &ExitError{Code: ExitInvalidInput, Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), modpath.Join(args...))
			return err
		},
	}
}
