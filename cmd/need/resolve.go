// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/invowk/need/internal/issue"
	"github.com/invowk/need/pkg/need"
)

const (
	kindModule = "module"
	kindCore   = "core"
)

type (
	// resolveRequest captures the inputs of `need resolve`.
	resolveRequest struct {
		Name   need.ModuleName
		From   string
		Source bool
		JSON   bool
	}

	// resolveResult is the --json output of `need resolve`.
	resolveResult struct {
		Name    string `json:"name"`
		From    string `json:"from"`
		Kind    string `json:"kind"`
		ID      string `json:"id,omitempty"`
		Backend string `json:"backend"`
		Source  string `json:"source,omitempty"`
	}
)

func newResolveCommand(app *App) *cobra.Command {
	var req resolveRequest

	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Resolve a module name from a directory",
		Long: `Resolve a module name as require() would from the --from directory.

Configured core modules are registered first and take precedence over
dependency directories. The module path is printed on success; a name that
cannot be found exits with status 1, a malformed name with status 2.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = need.ModuleName(args[0])
			return runResolve(cmd.Context(), app, req)
		},
	}

	cmd.Flags().StringVar(&req.From, "from", "/", "directory the name is requested from")
	cmd.Flags().BoolVar(&req.Source, "source", false, "print the module source after its path")
	cmd.Flags().BoolVar(&req.JSON, "json", false, "print the result as JSON")

	return cmd
}

func runResolve(ctx context.Context, app *App, req resolveRequest) error {
	if err := checkName(req.Name); err != nil {
		return err
	}

	sess, err := app.newSession(ctx)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	ctx, span := sess.tracer.Start(ctx, "resolve")
	span.SetAttributes(
		attribute.String("need.name", req.Name.String()),
		attribute.String("need.from", req.From),
	)
	defer span.End()

	entries, err := sess.cfg.CoreEntries()
	if err != nil {
		return err
	}
	if err := sess.loader.LoadCore(ctx, req.From, entries); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "core modules failed to load")
		return classifyResolveError(err)
	}

	art, ok, err := sess.resolver.Resolve(ctx, req.From, req.Name)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolution failed")
		return classifyResolveError(err)
	}
	if !ok {
		span.SetAttributes(attribute.Bool("need.found", false))
		return classifyResolveError(&need.NotFoundError{Start: req.From, Name: req.Name})
	}
	span.SetAttributes(attribute.Bool("need.found", true))

	result := resolveResult{
		Name:    req.Name.String(),
		From:    req.From,
		Kind:    kindModule,
		Backend: sess.backend,
	}
	if !req.Name.IsRelative() && slices.Contains(sess.resolver.CoreNames(), req.Name) {
		result.Kind = kindCore
	}
	if m, isModule := art.(*need.Module); isModule {
		result.ID = m.ID().String()
		if req.Source {
			result.Source = m.Source()
		}
	}
	sess.logger.Debug("resolved", "name", req.Name, "id", result.ID, "kind", result.Kind)

	return printResolveResult(app, result, req.JSON)
}

func printResolveResult(app *App, result resolveResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	switch {
	case result.ID != "":
		fmt.Fprintln(app.stdout, SuccessStyle.Render(result.ID))
	default:
		fmt.Fprintln(app.stdout, SuccessStyle.Render(kindCore+":"+result.Name))
	}
	if result.Source != "" {
		fmt.Fprint(app.stdout, result.Source)
		if result.Source[len(result.Source)-1] != '\n' {
			fmt.Fprintln(app.stdout)
		}
	}
	return nil
}

// checkName validates name up front so that malformed input never reaches a
// backend and always exits with ExitInvalidInput.
func checkName(name need.ModuleName) error {
	err := name.Validate()
	if err == nil && !name.IsRelative() {
		err = name.ValidateTopLevel()
	}
	if err != nil {
		return classifyResolveError(err)
	}
	return nil
}

// classifyResolveError turns resolver errors into actionable errors carrying
// the matching exit code.
func classifyResolveError(err error) error {
	var (
		nameErr     *need.InvalidNameError
		notFound    *need.NotFoundError
		manifestErr *need.ManifestError
		dupErr      *need.DuplicateCoreError
	)

	switch {
	case errors.As(err, &nameErr):
		return &ExitError{Code: ExitInvalidInput, Err: issue.NewErrorContext().
			WithOperation("validate module name").
			WithResource(nameErr.Name.String()).
			WithSuggestion("Names may only contain letters, digits and _~/.-").
			WithSuggestion("Relative names start with './' or '../'").
			WithIssue(issue.InvalidModuleNameId).
			Wrap(err).
			BuildError()}
	case errors.As(err, &notFound):
		return &ExitError{Code: ExitNotFound, Err: issue.NewErrorContext().
			WithOperation("resolve module").
			WithResource(notFound.Name.String()).
			WithSuggestion("Check that the module is installed in a dependency directory above " + notFound.Start).
			WithSuggestion("Run with --verbose to list every candidate that was tried").
			WithIssue(issue.ModuleNotFoundId).
			Wrap(err).
			BuildError()}
	case errors.As(err, &manifestErr):
		return issue.NewErrorContext().
			WithOperation("read module manifest").
			WithResource(manifestErr.Path.String()).
			WithSuggestion("Fix the JSON syntax of the manifest").
			WithIssue(issue.ManifestParseErrorId).
			Wrap(err).
			BuildError()
	case errors.As(err, &dupErr):
		return &ExitError{Code: ExitInvalidInput, Err: issue.NewErrorContext().
			WithOperation("register core module").
			WithResource(dupErr.Name.String()).
			WithSuggestion("Each core name may appear only once in the core table").
			WithIssue(issue.DuplicateCoreId).
			Wrap(err).
			BuildError()}
	default:
		return err
	}
}
