package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/config"
	httpAdapter "github.com/google/autoparse/pkg/adapters/http"
	"github.com/google/autoparse/pkg/adapters/mcp"
)

// Preload loads the configured schemas, or everything the source lists.
// Failures are logged; the server still starts with what did compile.
func Preload(ctx context.Context, engine *autoparse.Engine, cfg config.Config, logger *slog.Logger) {
	if err := engine.Preload(ctx, cfg.Preload...); err != nil {
		logger.Warn("schema preload incomplete", "error", err)
	}
	logger.Info("schemas ready", "count", len(engine.Schemas()))
}

// Serve runs the HTTP service until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, engine *autoparse.Engine, cfg config.Config, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger)),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting autoparse server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", cfg.HTTP.ShutdownTimeout, "error", err)
			return srv.Close()
		}
		return nil
	}
}

// ServeMCP runs the MCP server over the configured transport.
func ServeMCP(ctx context.Context, engine *autoparse.Engine, cfg config.Config, logger *slog.Logger) error {
	srv := mcp.NewServer(engine)
	switch cfg.MCP.Transport {
	case "stdio":
		logger.Info("starting autoparse MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("starting autoparse MCP server (SSE)", "port", cfg.MCP.Port)
		err := srv.ServeSSE(ctx, cfg.MCP.Port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	return errors.New("unknown MCP transport " + cfg.MCP.Transport + ", supported: stdio, sse")
}
