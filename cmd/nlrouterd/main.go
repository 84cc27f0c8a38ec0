package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rakki194/nlrouter/internal/app"
	"github.com/rakki194/nlrouter/internal/domain"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	opts := rootOptions{
		configPath: "nlrouter.yaml",
	}

	root := newRootCmd(&opts)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "nlrouterd",
		Short:         "Natural-language tool suggestion router",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to router config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
		newSuggestCmd(opts),
	)

	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listenAddress string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the suggestion router",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := app.BuildLogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application := app.New(logger)
			if err := application.Serve(ctx, app.ServeConfig{
				ConfigPath:    opts.configPath,
				ListenAddress: listenAddress,
			}); err != nil {
				logger.Error("serve failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddress, "listen", "", "listen address override")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var print bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate router configuration without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := app.BuildLogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			application := app.New(logger)
			return application.Validate(cmd.Context(), app.ValidateOptions{
				ConfigPath: opts.configPath,
				Print:      print,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().BoolVar(&print, "print", false, "print the normalized configuration")
	return cmd
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	var (
		currentPath string
		maxResults  int
		reasoning   bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Evaluate a single query against the configured tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := app.BuildLogger(opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			application := app.New(logger)
			resp, err := application.SuggestOnce(cmd.Context(), opts.configPath, domain.SuggestRequest{
				Text:             args[0],
				Context:          domain.QueryContext{CurrentPath: currentPath},
				MaxSuggestions:   maxResults,
				IncludeReasoning: reasoning,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&currentPath, "path", "", "current path context")
	cmd.Flags().IntVar(&maxResults, "max", 0, "maximum suggestions to return")
	cmd.Flags().BoolVar(&reasoning, "reasoning", false, "include scoring reasoning")
	return cmd
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
