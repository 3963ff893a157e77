package seed

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureDefaultProfile(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureDefaultProfile(tx *sql.Tx, stats *Stats) error {
	cfg := pricing.DefaultConfig()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM profiles WHERE name = ? LIMIT 1)`, cfg.ProductName).Scan(&exists); err != nil {
		return fmt.Errorf("check default profile existence: %w", err)
	}
	if exists {
		return nil
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode default profile config: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO profiles (name, notes, config_json)
		VALUES (?, ?, ?)
	`, cfg.ProductName, "", string(configJSON)); err != nil {
		return fmt.Errorf("insert default profile: %w", err)
	}
	stats.Inserts++
	return nil
}
