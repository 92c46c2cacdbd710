package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ssmixtwins/ssmixtwins/internal/config"
	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/platform/telemetry"
	"github.com/ssmixtwins/ssmixtwins/internal/ssmix"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
	"github.com/ssmixtwins/ssmixtwins/internal/worker"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "ssmixtwins",
		Short: "Synthetic SS-MIX2 standardized storage generator",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bindFlags lets command line flags override loaded config values.
func bindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceDir, _ = flags.GetString("source")
	}
	if flags.Changed("output") {
		cfg.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("encoding") {
		cfg.Encoding, _ = flags.GetString("encoding")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("physicians") {
		cfg.Physicians, _ = flags.GetInt("physicians")
	}
	if flags.Changed("pools") {
		cfg.PoolsFile, _ = flags.GetString("pools")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "Directory holding patient CSV files (searched recursively)")
	cmd.Flags().String("output", "", "Directory the storage tree is created under")
	cmd.Flags().String("encoding", "", "Output encoding: iso-2022-jp or utf-8")
	cmd.Flags().Int("workers", 0, "Concurrent patients")
	cmd.Flags().Int64("seed", 0, "Master random seed")
	cmd.Flags().Int("physicians", 0, "Size of the shared physician pool")
	cmd.Flags().String("pools", "", "YAML file overriding the built-in name pools")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replay every source file into a standardized storage tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			bindFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := telemetry.NewLogger(telemetry.LoggerOptions{Level: cfg.LogLevel})
			if err != nil {
				return err
			}
			logger = logger.With().Str("run_id", uuid.NewString()).Logger()

			paths, err := collectSources(cfg.SourceDir)
			if err != nil {
				return err
			}
			logger.Info().Int("sources", len(paths)).Str("output", cfg.OutputDir).Msg("starting generation")

			tab := tables.Default()
			encoding, err := ssmix.ParseEncoding(cfg.Encoding)
			if err != nil {
				return err
			}
			root := filepath.Join(cfg.OutputDir, "ssmixtwins")
			if err := os.MkdirAll(root, 0o755); err != nil {
				return err
			}
			store := ssmix.NewStore(root, encoding, tab)

			var pools *clinical.Pools
			if cfg.PoolsFile != "" {
				pools, err = clinical.LoadPools(cfg.PoolsFile)
				if err != nil {
					return err
				}
			}

			runner := worker.NewRunner(tab, store, pools, worker.Options{
				Workers:    cfg.Workers,
				Seed:       cfg.Seed,
				Physicians: cfg.Physicians,
				Policy:     cfg.Policy(),
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			report, err := runner.Run(ctx, paths)
			if err != nil {
				return err
			}

			summary := logger.Info().
				Int("patients", report.Patients).
				Int("failed", report.Failed).
				Int("files", report.Files).
				Dur("elapsed", report.Elapsed)
			for category, n := range report.ByType {
				summary = summary.Int(strings.ToLower(string(category)), n)
			}
			summary.Msg("generation finished")
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d source files failed", report.Failed, len(paths))
			}
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check source files without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			bindFlags(cmd, cfg)
			if cfg.SourceDir == "" {
				return fmt.Errorf("SOURCE_DIR is required")
			}
			logger, err := telemetry.NewLogger(telemetry.LoggerOptions{Level: cfg.LogLevel})
			if err != nil {
				return err
			}
			paths, err := collectSources(cfg.SourceDir)
			if err != nil {
				return err
			}
			tab := tables.Default()
			runner := worker.NewRunner(tab, nil, nil, worker.Options{}, logger)
			if err := runner.Validate(paths); err != nil {
				return err
			}
			logger.Info().Int("sources", len(paths)).Msg("all source files are valid")
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("ssmixtwins", version)
		},
	}
}

// collectSources walks the source directory recursively for CSV files.
func collectSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no CSV files found under %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}
