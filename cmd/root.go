package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/chartprep-cli/internal/config"
	"github.com/KaramelBytes/chartprep-cli/internal/loader"
	"github.com/KaramelBytes/chartprep-cli/internal/output"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	flagOutput string
	flagQuery  string
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg *cfgpkg.Global
	// Debug logger; discards unless --debug is set.
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "chartprep",
	Short: "chartprep: reduce categorical tables into chart-ready form",
	Long: `chartprep loads a CSV, TSV or XLSX table from a file or URL, reorders,
collapses, accumulates or groups its categories, and prints the result or
renders it as an SVG chart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format := flagOutput
		if !cmd.Flags().Changed("output") && cfg != nil && cfg.OutputFormat != "" {
			format = cfg.OutputFormat
		}
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = output.WithFormat(ctx, f)
		ctx = output.WithQuery(ctx, flagQuery)
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.chartprep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "output format: table|text|csv|markdown|json|ndjson|yaml")
	rootCmd.PersistentFlags().StringVar(&flagQuery, "query", "", "jq expression applied to structured output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max retry attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	if debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	logger.Debug("config loaded", "file", cfgFile, "http_timeout_sec", cfg.HTTPTimeoutSec, "retry_max_attempts", cfg.RetryMaxAttempts)
}

// newLoader builds a loader from the effective configuration.
func newLoader() *loader.Loader {
	opt := loader.DefaultOptions()
	if cfg != nil {
		opt = cfg.LoaderOptions()
	}
	opt.Logger = logger
	return loader.New(opt)
}

// otherLabel returns the configured label for collapsed categories.
func otherLabel(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg != nil && cfg.OtherLabel != "" {
		return cfg.OtherLabel
	}
	return "Other"
}

// printer writes command results to cmd's stdout in the requested format.
func printer(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), output.FormatFromContext(cmd.Context()))
}
