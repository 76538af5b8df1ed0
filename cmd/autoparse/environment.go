package main

import (
	"log/slog"

	"github.com/google/autoparse"
	"github.com/google/autoparse/internal/config"
)

type environment struct {
	cfg     config.Config
	logger  *slog.Logger
	engine  *autoparse.Engine
	cleanup func()
}
