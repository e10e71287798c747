package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required values are enforced by must()
// and missing values cause the program to exit with a fatal log message;
// tunables fall back to defaults.
type Config struct {
	Env           string        // application environment (e.g. "dev", "prod")
	Port          string        // HTTP port to listen on
	DBUser        string        // database username
	DBPass        string        // database password (optional)
	DBHost        string        // database host address
	DBPort        string        // database port number
	DBName        string        // database name
	SessionSecret string        // secret used to sign session tokens
	SessionTTL    time.Duration // lifetime of an issued session token
	HoldTTL       time.Duration // fixed seat hold duration (registry key expiry)
	SweepInterval time.Duration // how often the expiry sweeper reconciles
	Backplane     bool          // fan seat updates out through Redis pub/sub
	SeedDemo      bool          // seed a demo trip when the database is empty
}

// Load reads configuration values from environment variables and returns
// a Config. The hold TTL defaults to 20 seconds; the sweep interval
// defaults to a quarter of the TTL so an expired hold is observed within
// one reconciliation cycle.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		DBUser:        must("DB_USER"),
		DBPass:        os.Getenv("DB_PASS"), // empty allowed
		DBHost:        must("DB_HOST"),
		DBPort:        must("DB_PORT"),
		DBName:        must("DB_NAME"),
		SessionSecret: must("SESSION_SECRET"),
		SessionTTL:    envDur("SESSION_TTL", 24*time.Hour),
		HoldTTL:       envDur("HOLD_TTL", 20*time.Second),
		SweepInterval: envDur("SWEEP_INTERVAL", 0),
		Backplane:     envBool("WS_BACKPLANE", false),
		SeedDemo:      envBool("SEED_DEMO", true),
	}
	if cfg.HoldTTL < time.Second {
		cfg.HoldTTL = time.Second
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.HoldTTL / 4
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
