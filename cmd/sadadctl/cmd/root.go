package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/sadad_api/internal/config"
	"github.com/GTDGit/sadad_api/internal/service"
	"github.com/GTDGit/sadad_api/pkg/sadad"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "sadadctl",
	Short: "Operate a SadadPay merchant account from the command line",
	Long: `sadadctl talks to the SadadPay gateway with the credentials from the
environment (SADAD_CLIENT_ID, SADAD_CLIENT_SECRET, SADAD_SANDBOX).

Examples:
  # Check the credentials
  sadadctl token

  # Convert 25 USD into KWD
  sadadctl convert USD 25

  # Create an invoice
  sadadctl invoice create --ref ORD-1 --amount 12.5 --mobile 96555512345`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(cmd.ErrOrStderr())
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write gateway audit lines to stderr")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, text)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "Overall deadline for the command")
}

func setupLogger(w io.Writer) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// newGateway builds a client from the environment. Rates are cached for the
// lifetime of the command only.
func newGateway(cmd *cobra.Command) (*sadad.Client, error) {
	cfg, err := config.LoadGateway()
	if err != nil {
		return nil, err
	}

	var audit io.Writer
	if verbose {
		audit = cmd.ErrOrStderr()
	}
	return service.NewSadadClient(cfg, sadad.NewMemoryRateCache(cfg.RateCacheTTL), audit)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// render writes v as indented JSON, or calls text for the text format.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "text":
		text(out)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (use json or text)", outputFormat)
	}
}
