// Package backend builds the record store (and optional rollover publisher)
// selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfel/internal/amqp"
	"portfel/internal/config"
	"portfel/internal/ports"
	"portfel/internal/storage"
	"portfel/internal/storage/memory"
)

type Type string

const (
	MemoryBackend Type = config.BackendMemory
	SQLiteBackend Type = config.BackendSQLite
)

func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

type Config struct {
	Type         Type
	SQLiteDBPath string

	// Rollover events are published only when AMQPURL is set.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         Type(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	return nil
}

// Result is what a backend hands to the services. Publisher is nil when
// AMQP is not configured or not reachable.
type Result struct {
	Store     ports.RecordStore
	Publisher ports.RolloverPublisher
	Cleanup   func() error
}

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var store ports.RecordStore
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
	case MemoryBackend:
		store = memory.NewWithDefaults()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	}

	result := &Result{Store: store}
	var client *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without rollover events", "error", err)
		} else {
			result.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return result, nil
}
