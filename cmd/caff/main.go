package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/caff"
	"github.com/meigma/caff/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the settings shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// options returns the codec options implied by the configuration.
func (a *app) options() []caff.Option {
	check := caff.MagicCheckStrict
	if a.cfg.LenientMagic {
		check = caff.MagicCheckLenient
	}
	return []caff.Option{
		caff.WithMagicCheck(check),
		caff.WithLogger(a.logger),
		caff.WithMaxTrailingSize(a.cfg.MaxTrailingSize),
	}
}

// newApp loads the config file and applies command line overrides.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if cmd.Flags().Changed("lenient-magic") {
		cfg.LenientMagic, _ = cmd.Flags().GetBool("lenient-magic")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers, _ = cmd.Flags().GetInt("workers")
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return &app{cfg: cfg, logger: logger}, nil
}

var rootCmd = &cobra.Command{
	Use:          "caff",
	Short:        "Inspect, unpack and repack CAFF archives",
	SilenceUsage: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Print the header, entries and opaque regions of archives",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		reports, err := inspectFiles(cmd.Context(), args, a.cfg.WorkerCount(), a.options())
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), reports)
		}
		for i := range reports {
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err := writeText(cmd.OutOrStdout(), &reports[i]); err != nil {
				return err
			}
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE DIR",
	Short: "Write every payload and a caff.toml manifest into DIR",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		n, err := extract(cmd.Context(), args[0], args[1], a.cfg.WorkerCount(), a.options())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d entries to %s\n", n, args[1])
		return nil
	},
}

var packCmd = &cobra.Command{
	Use:   "pack DIR FILE",
	Short: "Build an archive from an extracted directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		n, err := pack(cmd.Context(), args[0], args[1], a.cfg.WorkerCount(), a.options())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Packed %d entries into %s\n", n, args[1])
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify FILE...",
	Short: "Check that archives re-encode to identical bytes",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		results := verifyFiles(cmd.Context(), args, a.cfg.WorkerCount(), a.options())
		return writeVerify(cmd.OutOrStdout(), results)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <user config dir>/caff/caff.toml)")
	rootCmd.PersistentFlags().Bool("lenient-magic", false, "Keep decoding archives with a bad signature")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().IntP("workers", "j", 0, "Archives or payloads processed concurrently")

	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print reports as JSON")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(verifyCmd)
}
