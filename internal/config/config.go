// Package config loads runtime settings from .env files and the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Snapshot backends.
const (
	SnapshotSQLite = "sqlite"
	SnapshotRedis  = "redis"
	SnapshotFile   = "file"
)

// Config holds process settings.
type Config struct {
	// DB is the SQLite database path holding the catalog and, for the sqlite
	// backend, the snapshots.
	DB string
	// PostgresDSN, when set, selects a Postgres catalog instead of DB.
	PostgresDSN string
	// CatalogTable names the catalog table.
	CatalogTable string
	// Snapshot selects the snapshot backend: sqlite, redis or file.
	Snapshot string
	// SnapshotName is the name the index is stored under. Empty means the
	// catalog table name, which dom_admin rebuilds write to as well.
	SnapshotName string
	// SnapshotDir is the directory used by the file backend.
	SnapshotDir string
	Redis       Redis
}

// Redis holds connection settings for the redis snapshot backend.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Load reads .env files (missing files are ignored) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env", filepath.Join("data", "env", ".env")}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() *Config {
	cfg := &Config{
		DB:           getenv("DOMINDEX_DB", "domindex.sqlite"),
		PostgresDSN:  os.Getenv("DOMINDEX_PG_DSN"),
		CatalogTable: getenv("DOMINDEX_CATALOG_TABLE", "catalog_points"),
		Snapshot:     strings.ToLower(getenv("DOMINDEX_SNAPSHOT", SnapshotSQLite)),
		SnapshotName: os.Getenv("DOMINDEX_SNAPSHOT_NAME"),
		SnapshotDir:  getenv("DOMINDEX_SNAPSHOT_DIR", filepath.Join("data", "snapshots")),
	}
	cfg.Redis.Addr = getenv("REDIS_HOST", "127.0.0.1") + ":" + getenv("REDIS_PORT", "6379")
	cfg.Redis.Password = os.Getenv("REDIS_PASS")
	if v := os.Getenv("REDIS_DB"); v != "" {
		// ignore parse error silently, default 0
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Redis.DB = n
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
