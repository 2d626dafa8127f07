package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/chartprep-cli/internal/config"
	"github.com/KaramelBytes/chartprep-cli/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set chartprep configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		p := printer(cmd)
		if output.IsStructured(p.Format()) || output.QueryFromContext(cmd.Context()) != "" {
			return p.Print(cmd.Context(), cfg)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(w, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(w, "retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Fprintf(w, "retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Fprintf(w, "cache_enabled: %t\n", cfg.CacheEnabled)
		fmt.Fprintf(w, "cache_max_bytes: %d\n", cfg.CacheMaxBytes)
		fmt.Fprintf(w, "other_label: %s\n", cfg.OtherLabel)
		fmt.Fprintf(w, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(w, "chart_width: %d\n", cfg.ChartWidth)
		fmt.Fprintf(w, "chart_height: %d\n", cfg.ChartHeight)
		fmt.Fprintf(w, "recipes_dir: %s\n", cfg.RecipesDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "http_timeout_sec":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.HTTPTimeoutSec = i
		case "retry_max_attempts":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryMaxAttempts = i
		case "retry_base_delay_ms":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryBaseDelayMs = i
		case "retry_max_delay_ms":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.RetryMaxDelayMs = i
		case "cache_enabled":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for cache_enabled: %v", val)
			}
			cfg.CacheEnabled = b
		case "cache_max_bytes":
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid int for cache_max_bytes: %v", val)
			}
			cfg.CacheMaxBytes = n
		case "other_label":
			if val == "" {
				return fmt.Errorf("other_label must not be empty")
			}
			cfg.OtherLabel = val
		case "output_format":
			f, err := output.ParseFormat(val)
			if err != nil {
				return err
			}
			cfg.OutputFormat = string(f)
		case "chart_width":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.ChartWidth = i
		case "chart_height":
			i, err := positiveInt(key, val)
			if err != nil {
				return err
			}
			cfg.ChartHeight = i
		case "recipes_dir":
			cfg.RecipesDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "✓ Saved config")
		return nil
	},
}

func positiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
