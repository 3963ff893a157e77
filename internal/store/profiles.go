package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when a profile name is already taken.
var ErrDuplicateName = errors.New("profile name already exists")

// Profile is a saved product configuration.
type Profile struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Notes     string         `json:"notes"`
	Config    pricing.Config `json:"config"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
}

// Store persists profiles and calculation history.
type Store struct {
	db *sql.DB
}

// New wraps an open, migrated database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateProfile inserts p and returns its id.
func (s *Store) CreateProfile(ctx context.Context, p Profile) (int64, error) {
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return 0, fmt.Errorf("encode profile config: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, notes, config_json)
		VALUES (?, ?, ?)
	`, p.Name, p.Notes, string(configJSON))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateName
		}
		return 0, fmt.Errorf("insert profile: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read profile id: %w", err)
	}
	return id, nil
}

// GetProfile loads one profile.
func (s *Store) GetProfile(ctx context.Context, id int64) (Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(notes, ''), config_json, created_at, updated_at
		FROM profiles
		WHERE id = ?
	`, id)

	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns profiles whose name or notes contain query, most recently
// updated first. An empty query lists everything.
func (s *Store) ListProfiles(ctx context.Context, query string) ([]Profile, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(notes, ''), config_json, created_at, updated_at
		FROM profiles
		WHERE (? = '' OR name LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(updated_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// UpdateProfile replaces the name, notes and config of profile p.ID.
func (s *Store) UpdateProfile(ctx context.Context, p Profile) error {
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("encode profile config: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET
			name = ?,
			notes = ?,
			config_json = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Notes, string(configJSON), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("update profile: %w", err)
	}

	return expectOneRow(result, "update profile")
}

// DeleteProfile removes a profile. Its calculations stay in the history.
func (s *Store) DeleteProfile(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return expectOneRow(result, "delete profile")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	var configJSON string
	if err := row.Scan(&p.ID, &p.Name, &p.Notes, &configJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal([]byte(configJSON), &p.Config); err != nil {
		return Profile{}, fmt.Errorf("decode profile %d config: %w", p.ID, err)
	}
	return p, nil
}

func expectOneRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
