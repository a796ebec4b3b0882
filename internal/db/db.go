package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/tick/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and tunes the database backend.
type Config struct {
	Driver   string
	DSN      string
	LogLevel string
}

// Store is the persistence layer for users, projects, tasks and sessions.
// Every query is scoped to the user passed in.
type Store struct {
	db     *gorm.DB
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open sets up the database connection and runs migrations
func Open(cfg Config, opts ...Option) (*Store, error) {
	s := &Store{
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	dialector, err := s.dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger, err := newGormLogger(s.logger, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		NowFunc:        s.clock,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dialector.Name() == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql handle: %w", err)
		}
		// A single connection serializes writers, so the check-then-insert in
		// CreateNewSession cannot interleave.
		sqlDB.SetMaxOpenConns(1)
	}

	s.db = db

	if err := s.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	s.logger.Debug().
		Str("driver", dialector.Name()).
		Msg("database ready")

	return s, nil
}

func (s *Store) dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			path, err := getDatabasePath()
			if err != nil {
				return nil, fmt.Errorf("failed to get database path: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create tick directory: %w", err)
			}
			dsn = path
		}
		return sqlite.Open(sqliteDSN(dsn)), nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
		return postgres.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// getDatabasePath returns the path to the default SQLite database file
func getDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tick", "tick.db"), nil
}

// sqliteDSN switches on foreign keys (cascade deletes depend on them) and a
// busy timeout unless the caller already set them.
func sqliteDSN(dsn string) string {
	params := []string{}
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_time_format") {
		params = append(params, "_time_format=sqlite")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// runMigrations creates/updates the database schema
func (s *Store) runMigrations() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.Session{},
	)
	if err != nil {
		return err
	}

	// At most one open session per user. Partial indexes are understood by
	// both SQLite and Postgres.
	return s.db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_active_user ON sessions (user_id) WHERE end_time IS NULL",
	).Error
}

// clock returns the current instant in UTC at whole-second precision, the
// form every timestamp is stored in.
func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newGormLogger(l zerolog.Logger, level string) (logger.Interface, error) {
	var lvl logger.LogLevel
	switch strings.ToLower(level) {
	case "", "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "warn":
		lvl = logger.Warn
	case "info":
		lvl = logger.Info
	default:
		return nil, fmt.Errorf("invalid database log level %q", level)
	}

	gl := l.With().Str("component", "gorm").Logger()
	return logger.New(&gl, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	}), nil
}
