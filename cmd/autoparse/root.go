package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/autoparse/internal/cli"
	"github.com/google/autoparse/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autoparse",
	Short: "Autoparse compiles JSON Schemas and validates data against them",
	Long: `Autoparse loads JSON Schema documents from a directory or Redis, resolves
their references and validates JSON data against them. It can also serve
the schemas over HTTP or as MCP tools.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "autoparse.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the schema documents")
	rootCmd.PersistentFlags().String("base", "", "Base URI the schema directory is published under")
	rootCmd.PersistentFlags().String("source", "", "Schema source: file or redis")
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"log-level": &cfg.LogLevel,
		"dir":       &cfg.SchemaDir,
		"base":      &cfg.SchemaBase,
		"source":    &cfg.Source,
	}
	for flag, target := range overrides {
		if cmd.Flags().Changed(flag) {
			*target, _ = cmd.Flags().GetString(flag)
		}
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger and engine. The
// returned cleanup must be called when the command is done.
func setup(cmd *cobra.Command) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	engine, cleanup, err := cli.CreateEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, logger: logger, engine: engine, cleanup: cleanup}, nil
}
