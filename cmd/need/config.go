// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/invowk/need/internal/config"
)

const (
	formatCUE  = "cue"
	formatTOML = "toml"
)

// newConfigCommand creates the `need config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage need configuration",
		Long: `Manage need configuration.

Configuration is stored in:
  - Linux: ~/.config/need/config.cue
  - macOS: ~/Library/Application Support/need/config.cue
  - Windows: %APPDATA%\need\config.cue

A need.cue in the working directory is used when no user config exists.
Every key can be overridden with a NEED_ environment variable, for example
NEED_DEPENDENCY_DIR or NEED_BACKEND_BASE_URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd.Context(), app)
		},
	})

	var format string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE or TOML",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpConfig(cmd.Context(), app, format)
		},
	}
	dumpCmd.Flags().StringVar(&format, "format", formatCUE, "output format (cue or toml)")
	cfgCmd.AddCommand(dumpCmd)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	out := app.stdout
	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	if cfg.Path != "" {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("Config file"), cfg.Path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	showValue := func(key string, value any) {
		fmt.Fprintf(out, "%s: %s\n", KeyStyle.Render(key), SuccessStyle.Render(fmt.Sprintf("%v", value)))
	}
	showValue("dependency_dir", quoteEmpty(cfg.DependencyDir))
	showValue("manifest", quoteEmpty(cfg.Manifest))
	showValue("extension", quoteEmpty(cfg.Extension))
	showValue("index", cfg.Index)
	showValue("log_level", cfg.LogLevel)
	showValue("trace", cfg.Trace)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("backend"))
	fmt.Fprintf(out, "  kind: %s\n", SuccessStyle.Render(cfg.Backend.Kind.String()))
	switch cfg.Backend.Kind {
	case config.BackendFS:
		fmt.Fprintf(out, "  root: %s\n", SuccessStyle.Render(cfg.Backend.Root))
	case config.BackendHTTP:
		fmt.Fprintf(out, "  base_url: %s\n", SuccessStyle.Render(cfg.Backend.BaseURL))
		fmt.Fprintf(out, "  no_cache: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.Backend.NoCache)))
		fmt.Fprintf(out, "  timeout: %s\n", SuccessStyle.Render(cfg.Backend.Timeout.String()))
	case config.BackendGit:
		fmt.Fprintf(out, "  git_url: %s\n", SuccessStyle.Render(cfg.Backend.GitURL))
		fmt.Fprintf(out, "  git_ref: %s\n", SuccessStyle.Render(quoteEmpty(cfg.Backend.GitRef)))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("core"))
	if len(cfg.Core) == 0 {
		fmt.Fprintf(out, "  %s\n", SubtitleStyle.Render("(none configured)"))
	} else {
		for _, name := range slices.Sorted(maps.Keys(cfg.Core)) {
			fmt.Fprintf(out, "  %s: %s\n", name, SuccessStyle.Render(fmt.Sprintf("%v", cfg.Core[name])))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", KeyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", SuccessStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(app *App) error {
	cfgPath, created, err := config.CreateDefaultConfig()
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(app.stdout, "Config file already exists at: %s\n", cfgPath)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default config at: %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		fmt.Fprintln(app.stdout, cfg.Path)
		return nil
	}

	cfgPath, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s\n", cfgPath, SubtitleStyle.Render("(not created)"))
	return nil
}

func dumpConfig(ctx context.Context, app *App, format string) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}

	switch format {
	case formatCUE:
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
		return nil
	case formatTOML:
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(app.stdout, out)
		return nil
	default:
		return &ExitError{Code: ExitInvalidInput, Err: fmt.Errorf("unknown format %q (valid: cue, toml)", format)}
	}
}

// quoteEmpty shows an empty setting as "" instead of nothing.
func quoteEmpty(s string) string {
	if s == "" {
		return `""`
	}
	return s
}
