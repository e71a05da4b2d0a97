package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rendis/seamark/internal/artifacts"
	"github.com/rendis/seamark/internal/logging"
	"github.com/rendis/seamark/internal/pipeline"
	"github.com/rendis/seamark/internal/render"
	"github.com/rendis/seamark/pkg/mcp"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		printVersion()
		return
	}

	// Optional .env for local development; real deployments set env vars.
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := render.NewEngine(render.Options{
		ChromePath:    cfg.ChromePath,
		MaxPages:      cfg.MaxPages,
		MermaidSource: cfg.MermaidSource,
	}, logger)
	defer engine.Close()

	orchestrator := pipeline.New(engine, pipeline.Options{
		DefaultDeadline: time.Duration(cfg.DeadlineMs) * time.Millisecond,
		MaxDeadline:     time.Duration(cfg.MaxDeadlineMs) * time.Millisecond,
	}, logger)

	store := artifacts.NewStore(time.Duration(cfg.ArtifactTTLMs)*time.Millisecond, logger)
	store.StartSweeper()
	defer store.Stop()

	srv, err := mcp.NewSeamarkServer(mcp.SeamarkServerDeps{
		Pipeline:    orchestrator,
		Artifacts:   store,
		Logger:      logger,
		InlineLimit: cfg.InlineLimit,
	})
	if err != nil {
		return err
	}

	logger.Info("seamark listening on stdio",
		slog.String("version", version),
		slog.Int("max_pages", cfg.MaxPages))

	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("shutting down")
	return nil
}

// newLogger builds the process logger. Output goes to stderr because stdout
// carries the MCP stdio transport.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	inner := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}
