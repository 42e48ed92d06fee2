// main is the entry point of the records API.
//
// RUNNING THE SERVER:
//
//	go run ./cmd/records-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/records-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/records-api/internal/app"
	"github.com/aanand-mishra/records-api/internal/config"
	"github.com/aanand-mishra/records-api/internal/logger"
)

// Version is injected at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "records-api",
		Short: "records-api serves an in-memory record store over HTTP",
		Long: `records-api exposes create/read/update/delete operations on
{id, name, age} records as a small JSON REST API.

The configuration file is taken from --config, or from CONFIG_PATH when the
flag is not given. Every value in it can be overridden by environment
variables (see config/local.yaml).`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}

	root.Flags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"),
		"path to the configuration YAML file")
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the records-api version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(os.Stdout, cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	// Handlers log through the package-level slog functions.
	slog.SetDefault(log)

	log.Info("starting records-api",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
	)

	// os.Interrupt = Ctrl+C (SIGINT); SIGTERM is sent by `kill <pid>` and
	// container orchestrators. Either one cancels ctx and starts shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, cfg, log)
}
