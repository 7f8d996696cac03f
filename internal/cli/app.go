package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/projectplanning/planning-cloud-api/internal/config"
	"github.com/projectplanning/planning-cloud-api/internal/database"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"gorm.io/gorm"
)

// app holds the process-wide components shared by the subcommands.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	db    *gorm.DB
	store repository.Store
}

// bootstrap loads configuration, builds the logger and connects to the
// database with migrations applied.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg)
	apierrors.Debug = !cfg.IsRelease()

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &app{
		cfg:   cfg,
		log:   log,
		db:    db,
		store: repository.NewStore(db, database.DefaultRetryPolicy),
	}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.Error("failed to close database", "error", err)
	}
}

// newLogger builds a JSON logger in release mode and a text logger otherwise.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := strings.ToLower(cfg.LogFormat)
	if format == "" && cfg.IsRelease() {
		format = "json"
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
