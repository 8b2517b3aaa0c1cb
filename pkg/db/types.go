package db

import (
	"time"

	"github.com/ammar0144/crud4go/pkg/logger"
	"gorm.io/gorm"
)

// Config holds MySQL/GORM connection settings for the relational store
type Config struct {
	// Connection Settings
	Host     string `json:"host" yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     int    `json:"port" yaml:"port" envconfig:"DB_PORT" default:"3306"`
	Database string `json:"database" yaml:"database" envconfig:"DB_DATABASE"`
	Username string `json:"username" yaml:"username" envconfig:"DB_USERNAME"`
	Password string `json:"password" yaml:"password" envconfig:"DB_PASSWORD"`

	// Connection Pool Settings
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime" envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time" envconfig:"DB_CONN_MAX_IDLE_TIME" default:"30m"`

	// MySQL Specific Settings
	Charset   string `json:"charset" yaml:"charset" envconfig:"DB_CHARSET" default:"utf8mb4"`
	Collation string `json:"collation" yaml:"collation" envconfig:"DB_COLLATION" default:"utf8mb4_unicode_ci"`
	TimeZone  string `json:"timezone" yaml:"timezone" envconfig:"DB_TIMEZONE" default:"UTC"`

	// GORM Settings
	SkipDefaultTransaction bool          `json:"skip_default_transaction" yaml:"skip_default_transaction" envconfig:"DB_SKIP_DEFAULT_TRANSACTION" default:"false"`
	PrepareStmt            bool          `json:"prepare_stmt" yaml:"prepare_stmt" envconfig:"DB_PREPARE_STMT" default:"true"`
	QueryTimeout           time.Duration `json:"query_timeout" yaml:"query_timeout" envconfig:"DB_QUERY_TIMEOUT" default:"30s"`

	SSL SSLConfig `json:"ssl" yaml:"ssl"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SSLConfig holds TLS settings for the MySQL connection
type SSLConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" envconfig:"DB_SSL_ENABLED" default:"false"`
	CertFile   string `json:"cert_file" yaml:"cert_file" envconfig:"DB_SSL_CERT_FILE"`
	KeyFile    string `json:"key_file" yaml:"key_file" envconfig:"DB_SSL_KEY_FILE"`
	CAFile     string `json:"ca_file" yaml:"ca_file" envconfig:"DB_SSL_CA_FILE"`
	SkipVerify bool   `json:"skip_verify" yaml:"skip_verify" envconfig:"DB_SSL_SKIP_VERIFY" default:"false"` // not recommended for production
	ServerName string `json:"server_name" yaml:"server_name" envconfig:"DB_SSL_SERVER_NAME"`
}

// LoggingConfig controls statement logging
type LoggingConfig struct {
	Level              string        `json:"level" yaml:"level" envconfig:"DB_LOG_LEVEL" default:"error"` // silent, error, warn, info
	SlowQueryThreshold time.Duration `json:"slow_query_threshold" yaml:"slow_query_threshold" envconfig:"DB_SLOW_QUERY_THRESHOLD" default:"200ms"`
	LogQueryParameters bool          `json:"log_query_parameters" yaml:"log_query_parameters" envconfig:"DB_LOG_QUERY_PARAMETERS" default:"false"`
}

// Manager owns the shared connection pool every repository borrows from
type Manager struct {
	config *Config
	db     *gorm.DB
	logger logger.Logger
}

// Option customizes a Manager
type Option func(*Manager)

// WithLogger routes GORM statement logs through log
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		m.logger = log
	}
}
