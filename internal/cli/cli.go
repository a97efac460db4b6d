package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i18n-extract/internal/config"
	"i18n-extract/internal/output"
	"i18n-extract/internal/parser"
	"i18n-extract/internal/pickup"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "i18n-extract",
		Short: "Extract translatable strings from JavaScript and TypeScript sources",
		Long: `Finds calls to translation helpers such as _("..."), ngettext("...", "...", n)
or pgettext("context", "...") and reports the literal strings passed to them.

Which functions are recognised, and which of their arguments are messages,
is configured with pickup specs of the form id[:argspec,...]:
  N or Ng   argument N is a message
  Nc        argument N is the disambiguation context
  Nst       the first N arguments are plural forms`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default ./.i18n-extract.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(extractCmd(flags, stdout))
	rootCmd.AddCommand(scanCmd(flags, stdout))
	rootCmd.AddCommand(pickupsCmd(flags, stdout))

	return rootCmd
}

// loadConfig reads configuration and applies the log level.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(parsed)

	return cfg, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func scanCmd(flags *globalFlags, stdout io.Writer) *cobra.Command {
	var pickups []string
	var format string

	cmd := &cobra.Command{
		Use:   "scan <file>",
		Short: "Extract messages from a single source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if len(pickups) > 0 {
				cfg.Pickups = pickups
			}
			if format != "" {
				cfg.Format = format
			}

			ctx, cancel := setupContext()
			defer cancel()
			if cfg.ScanTimeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, cfg.ScanTimeout)
				defer cancel()
			}

			p := parser.NewSourceParser(pickup.NewTable(cfg.Pickups), nil)
			result, err := p.Parse(ctx, args[0], args[0])
			if err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}

			reportUnresolved(result.Messages)
			reportPlaceholders(result.Messages)
			return output.Write(stdout, cfg.Format, result.Messages)
		},
	}

	cmd.Flags().StringArrayVar(&pickups, "pickup", nil, "Pickup spec, repeatable (replaces configured pickups)")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or tsv")

	return cmd
}

func pickupsCmd(flags *globalFlags, stdout io.Writer) *cobra.Command {
	var pickups []string

	cmd := &cobra.Command{
		Use:   "pickups",
		Short: "Show how the configured pickup specs are interpreted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if len(pickups) > 0 {
				cfg.Pickups = pickups
			}

			table := pickup.NewTable(cfg.Pickups)
			fmt.Fprintf(stdout, "%-16s %-20s %-10s %-8s %s\n", "ID", "SPEC", "ARGS", "CONTEXT", "MAX")
			for _, d := range table.Descriptors() {
				ctxArg := "-"
				if n, ok := d.ContextArg(); ok {
					ctxArg = fmt.Sprint(n + 1)
				}
				fmt.Fprintf(stdout, "%-16s %-20s %-10s %-8s %d\n",
					d.ID(), d.Spec(), oneBased(d.UseArgs()), ctxArg, d.MaxArgs())
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&pickups, "pickup", nil, "Pickup spec, repeatable (replaces configured pickups)")

	return cmd
}

// oneBased renders zero-based positions the way pickup specs number them.
func oneBased(positions []int) string {
	s := ""
	for i, p := range positions {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprint(p + 1)
	}
	if s == "" {
		return "-"
	}
	return s
}

// elapsed formats a duration for log output.
func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
