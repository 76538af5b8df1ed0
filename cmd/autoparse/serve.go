package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/autoparse/internal/cli"
	"github.com/google/autoparse/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP validation server",
	Long:  `Preloads the schemas and serves validation, schema listing, OpenAPI export and Prometheus metrics over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()

		if cmd.Flags().Changed("addr") {
			env.cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tui.PrintBanner(cmd.ErrOrStderr())
		cli.Preload(ctx, env.engine, env.cfg, env.logger)
		return cli.Serve(ctx, env.engine, env.cfg, env.logger)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes schema validation and description as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.cleanup()

		if cmd.Flags().Changed("transport") {
			env.cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			env.cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cli.Preload(ctx, env.engine, env.cfg, env.logger)
		return cli.ServeMCP(ctx, env.engine, env.cfg, env.logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
