// Package config loads MySQL connection settings and opens the connection
// pool the rest of the module executes against.
package config

import (
	"fmt"
	"time"

	"github.com/go-extras/errx"
	errxtrace "github.com/go-extras/errx/stacktrace"
	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jmoiron/sqlx"
)

// Config is the connection surface spec.md §6 names, loaded from
// environment variables (with an optional YAML file as a base layer), the
// same two-source pattern the teacher's cmd/*/shared config loader uses.
type Config struct {
	Host            string        `yaml:"host" env:"QB_HOST" env-default:"127.0.0.1"`
	Port            int           `yaml:"port" env:"QB_PORT" env-default:"3306"`
	User            string        `yaml:"user" env:"QB_USER" env-default:"root"`
	Password        string        `yaml:"password" env:"QB_PASSWORD" env-default:""`
	Database        string        `yaml:"database" env:"QB_DATABASE" env-default:""`
	PoolSize        int           `yaml:"pool_size" env:"QB_POOL_SIZE" env-default:"10"`
	QueueLimit      int           `yaml:"queue_limit" env:"QB_QUEUE_LIMIT" env-default:"0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"QB_CONN_MAX_LIFETIME" env-default:"1h"`
	ParseTime       bool          `yaml:"parse_time" env:"QB_PARSE_TIME" env-default:"true"`
}

// Load reads Config from the environment, applying the env-default tags for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errxtrace.Wrap("failed to read configuration from environment", err)
	}
	return cfg, nil
}

// LoadFile reads Config from a YAML file first, then overlays environment
// variables on top, matching cleanenv's usual precedence.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, errxtrace.Wrap("failed to read configuration file", err, errx.Attrs("path", path))
	}
	return cfg, nil
}

// DSN renders the go-sql-driver/mysql data source name for this config.
func (c *Config) DSN() string {
	driverCfg := mysql.NewConfig()
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	driverCfg.User = c.User
	driverCfg.Passwd = c.Password
	driverCfg.DBName = c.Database
	driverCfg.ParseTime = c.ParseTime
	return driverCfg.FormatDSN()
}

// Open dials MySQL via go-sql-driver/mysql, applies the pool settings from
// cfg, and verifies connectivity with a Ping.
func Open(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, errxtrace.Wrap("failed to open mysql connection", err)
	}
	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errxtrace.Wrap("failed to ping mysql", err)
	}
	return db, nil
}
