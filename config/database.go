package config

import (
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"unsubscribe"`
	Password string `env:"PASSWORD"                envDefault:"unsubscribe"`
	Name     string `env:"NAME"                    envDefault:"unsubscribe"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration for the cross-process run lock.
// When Enabled is false the service falls back to an in-process lock.
type RedisConfig struct {
	Enabled  bool   `env:"ENABLED"  envDefault:"false"`
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	// LockTTL bounds how long a crashed holder can block other processes.
	LockTTL time.Duration `env:"LOCK_TTL" envDefault:"1h"`
}

// Sanitize applies guardrails to Redis configuration values.
func (r *RedisConfig) Sanitize() {
	r.URI = strings.TrimSpace(r.URI)
	if r.URI == "" {
		r.Enabled = false
	}
	if r.LockTTL < time.Minute {
		r.LockTTL = time.Minute
	}
}
