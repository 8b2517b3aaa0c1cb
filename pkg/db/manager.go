package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ammar0144/crud4go/pkg/logger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Lifecycle:
//   1. Build one Manager at application startup
//   2. Hand Manager.DB() to every repository; they share its pool
//   3. Call Close() at shutdown to release the pool

// NewDefaultManager creates a database manager with minimal configuration
func NewDefaultManager(host, database, username, password string, opts ...Option) (*Manager, error) {
	config := DefaultConfig()
	config.Host = host
	config.Database = database
	config.Username = username
	config.Password = password

	return NewManager(config, opts...)
}

// NewManager opens a MySQL connection pool described by config
func NewManager(config *Config, opts ...Option) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dsn, err := config.DSN()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return open(mysql.Open(dsn), config, opts...)
}

// NewManagerWithDialector opens a pool over an arbitrary GORM dialector.
// Only the pool and GORM settings of config are used.
func NewManagerWithDialector(dialector gorm.Dialector, config *Config, opts ...Option) (*Manager, error) {
	if dialector == nil {
		return nil, fmt.Errorf("dialector cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validatePool(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return open(dialector, config, opts...)
}

func open(dialector gorm.Dialector, config *Config, opts ...Option) (*Manager, error) {
	m := &Manager{
		config: config,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	gormConfig := &gorm.Config{
		SkipDefaultTransaction: config.SkipDefaultTransaction,
		PrepareStmt:            config.PrepareStmt,
		Logger:                 newStatementLogger(m.logger, config.Logging),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	m.db = db
	return m, nil
}

// DB returns the GORM database instance
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// SqlDB returns the underlying sql.DB instance
func (m *Manager) SqlDB() (*sql.DB, error) {
	return m.db.DB()
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Config returns the manager's configuration
func (m *Manager) Config() *Config {
	return m.config
}

// QueryTimeout is the per-statement deadline repositories should apply
func (m *Manager) QueryTimeout() time.Duration {
	return m.config.QueryTimeout
}

// Ping tests the database connection
func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection statistics
func (m *Manager) Stats() (sql.DBStats, error) {
	sqlDB, err := m.db.DB()
	if err != nil {
		return sql.DBStats{}, err
	}
	return sqlDB.Stats(), nil
}

// statementWriter feeds GORM's statement log into zerolog
type statementWriter struct {
	log logger.Logger
}

func (w statementWriter) Printf(format string, args ...interface{}) {
	w.log.Info().Msgf(format, args...)
}

func newStatementLogger(log logger.Logger, cfg LoggingConfig) gormlogger.Interface {
	return gormlogger.New(statementWriter{log: log.Component("gorm")}, gormlogger.Config{
		SlowThreshold:             cfg.SlowQueryThreshold,
		LogLevel:                  getLogLevel(cfg.Level),
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      !cfg.LogQueryParameters,
		Colorful:                  false,
	})
}

func getLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Error
	}
}
