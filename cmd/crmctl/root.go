package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amzmarine/crm/internal/app"
	"github.com/amzmarine/crm/internal/config"
)

type cliOptions struct {
	jsonOutput bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "crmctl",
		Short: "Operate the Amazon Marine freight CRM",
		Long: `Operate the Amazon Marine freight CRM.

Configuration is read from the environment (STORE_DRIVER, STORE_BADGER_DIR,
GEMINI_API_KEY, ...), the same variables the server uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newStatsCmd(opts),
		newLeadsCmd(opts),
		newShipmentsCmd(opts),
		newRepsCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// openApp loads the configuration and the CRM state.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.Open(ctx, cfg)
}

// withApp runs fn against an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) (err error) {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
			return withApp(cmd, func(a *app.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}
