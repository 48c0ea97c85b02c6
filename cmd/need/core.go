// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/need/pkg/need"
)

func newCoreCommand(app *App) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "core",
		Short: "List configured core modules and where they resolve",
		Long: `List the entries of the core table and the module each one loads.

An entry mapped to true loads the module of the same name; an entry mapped to
a string loads that module instead. Targets are resolved from --from. Exits
with status 1 if any target cannot be found.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCore(cmd.Context(), app, from)
		},
	}

	cmd.Flags().StringVar(&from, "from", "/", "directory core targets are resolved from")

	return cmd
}

func runCore(ctx context.Context, app *App, from string) error {
	sess, err := app.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	entries, err := sess.cfg.CoreEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no core modules configured)"))
		return nil
	}

	var firstErr error
	for _, e := range entries {
		target := e.Target
		if target == "" {
			target = e.Name
		}

		art, err := sess.loader.Require(ctx, from, target, need.RequireOptions{Core: e.Name})
		if err != nil {
			msg := "not found"
			if !errors.Is(err, need.ErrNotFound) {
				msg = err.Error()
			}
			fmt.Fprintf(app.stdout, "%s -> %s: %s\n", KeyStyle.Render(e.Name.String()), target, ErrorStyle.Render(msg))
			sess.logger.Debug("core module failed", "name", e.Name, "err", err)
			if firstErr == nil {
				firstErr = classifyResolveError(err)
			}
			continue
		}

		id := "(payload)"
		if m, ok := art.(*need.Module); ok {
			id = m.ID().String()
		}
		fmt.Fprintf(app.stdout, "%s -> %s: %s\n", KeyStyle.Render(e.Name.String()), target, SuccessStyle.Render(id))
	}

	return firstErr
}
