package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/neilberkman/tickr/internal/core/auth"
	"github.com/neilberkman/tickr/internal/core/config"
	"github.com/neilberkman/tickr/internal/core/db"
	"github.com/neilberkman/tickr/internal/core/models"
	"github.com/neilberkman/tickr/internal/core/remotesync"
	"github.com/neilberkman/tickr/internal/core/store"
	"github.com/neilberkman/tickr/internal/logging"
)

// app is what every command that touches the database opens
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *db.DB
	store   *store.Store
	auth    *auth.Holder
	logFile *os.File
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// openApp loads config, builds the logger and opens the database. Commands
// that own the terminal (the TUI, the stopwatch) log to a file instead of stderr.
func openApp(logToFile bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var out io.Writer = os.Stderr
	if logToFile {
		f, err := logging.OpenFile(cfg.LogPath())
		if err != nil {
			return nil, err
		}
		a.logFile = f
		out = f
	}
	a.log = newLogger(cfg, out)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = database
	a.store = store.New(database, store.WithLogger(a.log))
	a.auth = newHolder(cfg, database, a.log)
	return a, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	return logging.New(logging.Config{
		Level:      logging.ParseLevel(cfg.LogLevel),
		Format:     cfg.LogFormat,
		TimeFormat: time.RFC3339,
		Output:     out,
	})
}

func newHolder(cfg *config.Config, database *db.DB, log zerolog.Logger) *auth.Holder {
	var provider auth.Provider
	switch cfg.Auth.Provider {
	case config.AuthRemote:
		timeout, _ := cfg.SyncTimeout()
		provider = auth.NewHTTPProvider(cfg.Auth.URL, timeout)
	default:
		provider = auth.NewLocalProvider(database)
	}
	return auth.NewHolder(provider,
		auth.WithTokenStore(auth.NewFileStore(cfg.SessionPath())),
		auth.WithHolderLogger(log),
	)
}

// syncer returns nil when no sync server is configured
func (a *app) syncer() *remotesync.Syncer {
	if a.cfg.Sync.ServerURL == "" {
		return nil
	}
	timeout, _ := a.cfg.SyncTimeout()
	return remotesync.New(a.db, a.cfg.Sync.ServerURL, timeout, a.log)
}

// logContext carries the app logger, tagged with the command name, on ctx
func (a *app) logContext(ctx context.Context, component string) context.Context {
	return logging.WithComponent(logging.WithContext(ctx, a.log), component)
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

var errNoEntry = errors.New("no entry matches")

// resolve finds one entry by full id or unique id prefix
func (a *app) resolve(ctx context.Context, idOrPrefix string) (models.TimeEntry, error) {
	matches, err := a.db.FindByPrefix(ctx, idOrPrefix)
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("failed to look up entry: %w", err)
	}
	switch len(matches) {
	case 0:
		return models.TimeEntry{}, fmt.Errorf("%w %q", errNoEntry, idOrPrefix)
	case 1:
		return matches[0], nil
	}
	for _, m := range matches {
		if m.ID == idOrPrefix {
			return m, nil
		}
	}
	return models.TimeEntry{}, fmt.Errorf("id prefix %q is ambiguous (%d entries match)", idOrPrefix, len(matches))
}

// shortID is the display form of an entry id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
