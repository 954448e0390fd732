package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	ServerAddr       string        `env:"SERVER_ADDR,        default=:8080"`
	Env              string        `env:"ENV,                default=development"`
	LogLevel         string        `env:"LOG_LEVEL,          default=info"`
	CORSAllowOrigins []string      `env:"CORS_ALLOW_ORIGINS, default=*"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,   default=10s"`

	DB DBConfig
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER,   default=postgres"`
	URL    string `env:"DATABASE_URL"`

	Host     string `env:"DB_HOST,     default=localhost"`
	Port     int    `env:"DB_PORT,     default=5432"`
	User     string `env:"DB_USER,     default=postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME,     default=library"`
	SSLMode  string `env:"DB_SSLMODE,  default=disable"`

	SQLitePath string `env:"DB_SQLITE_PATH, default=library.db"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,    default=20"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,    default=10"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME, default=1h"`

	// ResetOnStart drops every table before the schema is created.
	ResetOnStart bool `env:"DB_RESET_ON_START, default=false"`
}

// DSN returns the PostgreSQL connection string. DATABASE_URL wins over the
// individual DB_* parts when set.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}, "TimeZone": {"UTC"}}.Encode(),
	}
	return u.String()
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	return &cfg, nil
}
