package config_test

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/denisvmedia/sqlbuilder/config"
)

func TestLoad_AppliesDefaultsWhenUnset(t *testing.T) {
	c := qt.New(t)

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Host, qt.Equals, "127.0.0.1")
	c.Assert(cfg.Port, qt.Equals, 3306)
	c.Assert(cfg.User, qt.Equals, "root")
	c.Assert(cfg.PoolSize, qt.Equals, 10)
	c.Assert(cfg.QueueLimit, qt.Equals, 0)
	c.Assert(cfg.ConnMaxLifetime, qt.Equals, time.Hour)
	c.Assert(cfg.ParseTime, qt.IsTrue)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	c := qt.New(t)

	t.Setenv("QB_HOST", "db.internal")
	t.Setenv("QB_PORT", "3307")
	t.Setenv("QB_DATABASE", "querybuilder_demo")

	cfg, err := config.Load()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Host, qt.Equals, "db.internal")
	c.Assert(cfg.Port, qt.Equals, 3307)
	c.Assert(cfg.Database, qt.Equals, "querybuilder_demo")
}

func TestDSN_RendersExpectedFormat(t *testing.T) {
	c := qt.New(t)

	cfg := &config.Config{
		Host:      "127.0.0.1",
		Port:      3306,
		User:      "root",
		Password:  "secret",
		Database:  "querybuilder_demo",
		ParseTime: true,
	}

	dsn := cfg.DSN()
	c.Assert(dsn, qt.Contains, "root:secret@tcp(127.0.0.1:3306)/querybuilder_demo")
	c.Assert(dsn, qt.Contains, "parseTime=true")
}
