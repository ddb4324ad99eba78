package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikbrunner/omnihist/internal/logging"
	"github.com/nikbrunner/omnihist/internal/navigate"
	"github.com/nikbrunner/omnihist/internal/storage"
	"github.com/nikbrunner/omnihist/internal/suggest"
	"github.com/rs/zerolog"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	strategy   string
	dryRun     bool
}

// app wires configuration, storage and the engine for one invocation.
type app struct {
	ctx     context.Context
	config  *storage.Config
	db      *storage.SQLiteStorage
	session storage.Storage
	engine  *suggest.Engine
	logFile *os.File
}

// openApp loads configuration and opens the history database. Flags win
// over the config file.
func openApp(ctx context.Context, opts *options, nav suggest.Navigator) (*app, error) {
	configPath := opts.configPath
	if configPath == "" {
		var err error
		configPath, err = storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
	}

	config, err := storage.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dbPath != "" {
		config.Database = opts.dbPath
	}
	if opts.strategy != "" {
		config.Strategy = opts.strategy
	}

	strategy, err := suggest.ParseStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}

	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	session, err := storage.OpenSession(*config, db, filepath.Join(filepath.Dir(configPath), "session.json"))
	if err != nil {
		db.Close()
		return nil, err
	}

	logging.FromContext(ctx).Debug().
		Str("strategy", strategy.Name).
		Str("db", db.Path()).
		Str("session_store", config.SessionStore).
		Msg("app opened")

	return &app{
		ctx:     ctx,
		config:  config,
		db:      db,
		session: session,
		engine: suggest.NewEngine(suggest.EngineParams{
			History:       db,
			Storage:       session,
			Navigator:     nav,
			Strategy:      &strategy,
			SearchBaseURL: config.SearchBaseURL,
		}),
	}, nil
}

// Close releases the database and log file.
func (a *app) Close() error {
	if a.logFile != nil {
		a.logFile.Close()
	}
	return a.db.Close()
}

// newLogger builds the invocation logger. The interactive omnibox owns the
// terminal, so it only logs when OMNIHIST_LOG_FILE names a file.
func newLogger(interactive bool) (zerolog.Logger, *os.File, error) {
	if !interactive {
		return logging.NewFromEnv(), nil, nil
	}

	path := os.Getenv("OMNIHIST_LOG_FILE")
	if path == "" {
		return zerolog.Nop(), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	cfg := logging.ConfigFromEnv()
	cfg.Output = f
	return logging.New(cfg), f, nil
}

func navigatorFor(opts *options) suggest.Navigator {
	if opts.dryRun {
		return &navigate.Recorder{}
	}
	return navigate.NewBrowser()
}
