package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

const (
	defaultEnv      = "dev"
	defaultDBPath   = "./shopcalc.db"
	defaultPort     = "8080"
	defaultStrategy = pricing.StrategyClosedForm
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env            string
	AdminEmail     string
	AdminPassword  string
	SessionSecret  string
	DBPath         string
	Port           string
	SolverStrategy pricing.Strategy
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. Variables already present in the
// process environment win over the file.
func LoadFrom(dotenvPath string) Config {
	// Missing file is fine; production injects real env.
	_ = godotenv.Load(dotenvPath)

	cfg := Config{
		Env:            os.Getenv("APP_ENV"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		DBPath:         os.Getenv("DB_PATH"),
		Port:           os.Getenv("PORT"),
		SolverStrategy: pricing.Strategy(os.Getenv("SOLVER_STRATEGY")),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.SolverStrategy == "" {
		cfg.SolverStrategy = defaultStrategy
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the app runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Validate checks values that would otherwise fail later at request time.
func Validate(cfg Config) error {
	switch cfg.Env {
	case "dev", "prod":
	default:
		return fmt.Errorf("APP_ENV must be dev or prod, got %q", cfg.Env)
	}
	if _, err := pricing.ParseStrategy(string(cfg.SolverStrategy)); err != nil {
		return fmt.Errorf("SOLVER_STRATEGY: %w", err)
	}
	if !cfg.IsDev() && cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required outside dev")
	}
	return nil
}
