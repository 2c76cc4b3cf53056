package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Empty when both the map and the scenario come from files.
	DatabaseURL string

	MapName      string
	ScenarioName string
	MapFile      string
	ScenarioFile string

	Seed                 uint64
	RepeatDays           int
	AvoidInboundTrips    bool
	RemoveWeirdSchedules bool

	NATSURL           string
	NATSSubjectPrefix string
	LogNATSSubjects   bool
	MetricsAddr       string
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.MapName = strings.TrimSpace(os.Getenv("MAP_NAME"))
	cfg.ScenarioName = strings.TrimSpace(os.Getenv("SCENARIO_NAME"))
	cfg.MapFile = os.Getenv("MAP_FILE")
	cfg.ScenarioFile = os.Getenv("SCENARIO_FILE")

	// Database URL (cluster DSN): prefer DATABASE_URL / PG_DSN, else build from PG* vars
	dsn := firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)
	if dsn == "" {
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		// Per-map databases are resolved through the cluster's 'postgres' database.
		if db == "" && cfg.MapName != "" {
			db = "postgres"
		}
		if db != "" {
			sslmode := getenvDefault("PGSSLMODE", "disable")
			if pass != "" {
				cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
			} else {
				cfg.DatabaseURL = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
			}
		}
	} else {
		cfg.DatabaseURL = dsn
	}

	cfg.Seed = 42
	if v := os.Getenv("RNG_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RNG_SEED: %q", v)
		}
		cfg.Seed = seed
	}

	cfg.RepeatDays = 1
	if v := os.Getenv("REPEAT_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days < 1 {
			return nil, fmt.Errorf("invalid REPEAT_DAYS: %q", v)
		}
		cfg.RepeatDays = days
	}
	cfg.AvoidInboundTrips = envBool("AVOID_INBOUND_TRIPS")
	cfg.RemoveWeirdSchedules = envBool("REMOVE_WEIRD_SCHEDULES")

	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")
	cfg.NATSSubjectPrefix = strings.Trim(getenvDefault("NATS_SUBJECT_PREFIX", "scenario"), ".")
	if cfg.NATSSubjectPrefix == "" {
		return nil, errors.New("NATS_SUBJECT_PREFIX must not be empty")
	}

	// Debug logging for NATS publish subjects
	cfg.LogNATSSubjects = envBool("LOG_NATS_SUBJECTS")

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

func envBool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
