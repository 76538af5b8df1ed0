package cli

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/config"
	"github.com/google/autoparse/pkg/adapters/file"
	"github.com/google/autoparse/pkg/adapters/redis"
	"github.com/google/autoparse/pkg/ports"
)

// CreateEngine initializes an engine whose source follows the configuration.
// The returned cleanup releases the source and is never nil.
func CreateEngine(cfg config.Config, logger *slog.Logger) (*autoparse.Engine, func(), error) {
	src, cleanup, err := createSource(cfg)
	if err != nil {
		return nil, func() {}, err
	}
	logger.Debug("schema source ready", "source", cfg.Source, "dir", cfg.SchemaDir, "base", cfg.SchemaBase)

	engine := autoparse.New(
		autoparse.WithSource(src),
		autoparse.WithLogger(logger),
	)
	return engine, cleanup, nil
}

func createSource(cfg config.Config) (ports.SchemaSource, func(), error) {
	switch cfg.Source {
	case "", config.SourceFile:
		return file.New(cfg.SchemaDir, file.WithBaseURI(cfg.SchemaBase)), func() {}, nil
	case config.SourceRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		src := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		return src, func() { _ = src.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown schema source %q (supported: %s, %s)", cfg.Source, config.SourceFile, config.SourceRedis)
}

// ResolveSchemaURI turns a command-line schema argument into a URI. Names
// without a scheme resolve against the configured base URI, or stay as
// written when there is none.
func ResolveSchemaURI(cfg config.Config, arg string) (string, error) {
	ref, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid schema %q: %w", arg, err)
	}
	if ref.IsAbs() || cfg.SchemaBase == "" {
		return arg, nil
	}
	base := cfg.SchemaBase
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid schema base %q: %w", cfg.SchemaBase, err)
	}
	return b.ResolveReference(ref).String(), nil
}
