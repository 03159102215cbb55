// quoter runs simulated quote feeds and serves them over HTTP and websocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zamyatin-zkex/quoter/config"
	"github.com/zamyatin-zkex/quoter/internal/service/interrupter"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	envFile string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quoter",
		Short:         "Simulated market quote feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (defaults to ./.env when present)")

	root.AddCommand(serveCmd())
	root.AddCommand(relayCmd())
	root.AddCommand(tailCmd())
	root.AddCommand(instrumentsCmd())
	root.AddCommand(versionCmd())

	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quoter version %s\n", version)
		},
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}

	return cfg, logger, nil
}

// exit treats a signal or a cancelled context as a clean stop.
func exit(err error) error {
	if errors.Is(err, interrupter.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
