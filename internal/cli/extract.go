package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"i18n-extract/internal/cache"
	"i18n-extract/internal/catalog"
	"i18n-extract/internal/config"
	"i18n-extract/internal/extract"
	"i18n-extract/internal/filewalker"
	"i18n-extract/internal/lexer"
	"i18n-extract/internal/output"
	"i18n-extract/internal/parser"
	"i18n-extract/internal/pickup"
	"i18n-extract/internal/placeholder"
	"i18n-extract/internal/textutil"
	"i18n-extract/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type extractOptions struct {
	pickups    []string
	format     string
	outputPath string
	store      bool
	workers    int
	timeout    time.Duration
}

func extractCmd(flags *globalFlags, stdout io.Writer) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <path>...",
		Short: "Extract messages from every source file under the given paths",
		Long: `Walks the given directories (or files), scans every JavaScript and TypeScript
file concurrently and writes one record per mapped argument of every pickup call.

Arguments that are not constant strings are written with empty text and logged,
so a call whose shape does not match its pickup spec is visible in the output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return runExtract(cfg, opts, args, stdout)
		},
	}

	cmd.Flags().StringArrayVar(&opts.pickups, "pickup", nil, "Pickup spec, repeatable (replaces configured pickups)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: json or tsv")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "Write records to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Persist records per file in PostgreSQL (requires database_url)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of files scanned concurrently")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-file scan timeout")

	return cmd
}

// apply overrides configuration with explicitly set flags.
func (o *extractOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if len(o.pickups) > 0 {
		cfg.Pickups = o.pickups
	}
	if o.format != "" {
		cfg.Format = o.format
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = o.workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.ScanTimeout = o.timeout
	}
}

// runExtract handles the `extract` command.
func runExtract(cfg *config.Config, opts *extractOptions, roots []string, stdout io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	start := time.Now()
	table := pickup.NewTable(cfg.Pickups)
	log.Debug().Int("pickups", table.Len()).Str("fingerprint", table.Fingerprint()[:12]).Msg("Pickup table ready")

	store, err := openCatalog(ctx, cfg.DatabaseURL, opts.store)
	if err != nil {
		return err
	}
	var backend cache.Backend
	if store != nil {
		defer store.Close()
		backend = store
	}
	scanCache, err := cache.NewScanCache(cfg.CacheSize, table.Fingerprint(), backend)
	if err != nil {
		return err
	}

	sourceParser := parser.NewSourceParser(table, scanCache)
	w, err := filewalker.NewWalker([]parser.Parser{sourceParser}, cfg.Include, cfg.Ignore)
	if err != nil {
		return err
	}
	entries, err := w.Walk(roots...)
	if err != nil {
		return fmt.Errorf("walk input: %w", err)
	}

	log.Info().Int("files", len(entries)).Int("workers", cfg.Workers).Msg("Starting extraction")

	pool := worker.NewPool[filewalker.FileEntry, *parser.ParseResult](cfg.Workers,
		func(ctx context.Context, entry filewalker.FileEntry) (*parser.ParseResult, error) {
			return entry.Parser.Parse(ctx, entry.Path, entry.Label)
		},
		worker.WithTaskTimeout(cfg.ScanTimeout),
	)
	results := pool.Execute(ctx, entries)

	var all []extract.Message
	failed, cached, unresolved, mismatched := 0, 0, 0, 0

	for _, r := range results {
		if r.Err != nil {
			failed++
			logScanFailure(r.Input, r.Err)
			continue
		}
		if r.Result.Cached {
			cached++
		}
		unresolved += reportUnresolved(r.Result.Messages)
		mismatched += reportPlaceholders(r.Result.Messages)
		all = append(all, r.Result.Messages...)

		if opts.store {
			if err := store.ReplaceFile(ctx, r.Input.Label, r.Result.Messages); err != nil {
				log.Error().Err(err).Str("file", r.Input.Label).Msg("Failed to store messages")
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeRecords(stdout, opts.outputPath, cfg.Format, all); err != nil {
		return err
	}

	log.Info().
		Int("files", len(entries)).
		Int("messages", len(all)).
		Int("unresolved", unresolved).
		Int("placeholder_mismatches", mismatched).
		Int("cached", cached).
		Int("failed", failed).
		Str("elapsed", elapsed(start)).
		Msg("Extraction complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be scanned", failed, len(entries))
	}
	return nil
}

// openCatalog connects to PostgreSQL when a database is configured. Unless
// records are to be stored, the database only backs the scan cache, so an
// unreachable server degrades to the in-memory cache with a warning.
func openCatalog(ctx context.Context, databaseURL string, required bool) (*catalog.Store, error) {
	if databaseURL == "" {
		if required {
			return nil, errors.New("--store requires database_url to be configured")
		}
		return nil, nil
	}

	store, err := catalog.Open(ctx, databaseURL)
	if err == nil {
		if err = store.EnsureSchema(ctx); err != nil {
			store.Close()
		}
	}
	if err != nil {
		if required {
			return nil, err
		}
		log.Warn().Err(err).Msg("PostgreSQL unavailable, using in-memory scan cache only")
		return nil, nil
	}
	return store, nil
}

func writeRecords(stdout io.Writer, path, format string, msgs []extract.Message) error {
	if path == "" {
		return output.Write(stdout, format, msgs)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := output.Write(f, format, msgs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}

	log.Info().Str("path", path).Int("messages", len(msgs)).Msg("Wrote records")
	return nil
}

func logScanFailure(entry filewalker.FileEntry, err error) {
	var synErr *lexer.SyntaxError
	if errors.As(err, &synErr) {
		log.Error().
			Str("file", entry.Label).
			Int("line", synErr.Line).
			Int("column", synErr.Column).
			Str("reason", synErr.Msg).
			Msg("Syntax error, file skipped")
		return
	}
	log.Error().Err(err).Str("file", entry.Label).Msg("Scan failed")
}

// reportUnresolved logs every message whose argument could not be determined
// statically and returns how many there were.
func reportUnresolved(msgs []extract.Message) int {
	n := 0
	for _, m := range msgs {
		if !m.Unresolved {
			log.Debug().Str("location", output.Location(m)).Str("text", summarize(m)).Msg("Extracted")
			continue
		}
		n++
		log.Warn().
			Str("location", output.Location(m)).
			Str("pickup", m.Pickup).
			Msgf("Argument %d of call at line %d could not be statically determined", m.Arg+1, m.Line)
	}
	return n
}

// reportPlaceholders logs calls whose forms disagree on placeholders and
// returns how many forms were affected.
func reportPlaceholders(msgs []extract.Message) int {
	mismatches := placeholder.Check(msgs)
	for _, m := range mismatches {
		log.Warn().
			Str("location", fmt.Sprintf("%s:%d", m.File, m.Line)).
			Str("pickup", m.Pickup).
			Strs("missing", m.Missing).
			Msgf("Argument %d uses placeholders the last form of the call does not", m.Arg+1)
	}
	return len(mismatches)
}

// summarize shortens message text for debug logging.
func summarize(m extract.Message) string {
	return textutil.Truncate(m.Text, 40)
}
