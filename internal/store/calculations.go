package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

const defaultHistoryLimit = 50

// Calculation is one stored run of the calculator. Config and Solution are snapshots
// taken at the time of the run and are never recomputed.
type Calculation struct {
	ID        string           `json:"id"`
	ProfileID *int64           `json:"profile_id,omitempty"`
	CreatedAt string           `json:"created_at"`
	Config    pricing.Config   `json:"config"`
	Solution  pricing.Solution `json:"solution"`
}

// CalculationSummary is the list view of a Calculation.
type CalculationSummary struct {
	ID           string           `json:"id"`
	ProfileID    *int64           `json:"profile_id,omitempty"`
	CreatedAt    string           `json:"created_at"`
	ProductName  string           `json:"product_name"`
	Mode         pricing.Mode     `json:"mode"`
	Strategy     pricing.Strategy `json:"strategy,omitempty"`
	SellingPrice float64          `json:"selling_price"`
	NetProfit    float64          `json:"net_profit"`
	NetMargin    float64          `json:"net_margin"`
	Feasible     bool             `json:"feasible"`
}

// RecordCalculation stores a calculation snapshot and returns its generated id.
// It returns ErrNotFound when profileID names no profile.
func (s *Store) RecordCalculation(ctx context.Context, profileID *int64, cfg pricing.Config, sol pricing.Solution) (string, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode calculation config: %w", err)
	}
	solutionJSON, err := json.Marshal(sol)
	if err != nil {
		return "", fmt.Errorf("encode calculation solution: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO calculations (
			id, profile_id, product_name, mode, strategy,
			selling_price, net_profit, net_margin, feasible,
			config_json, solution_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id, nullableID(profileID), cfg.ProductName, string(sol.Mode), string(sol.Strategy),
		sol.SellingPrice, sol.NetProfit, sol.NetMargin, sol.Feasible,
		string(configJSON), string(solutionJSON),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("insert calculation: %w", err)
	}
	return id, nil
}

// GetCalculation loads a stored calculation snapshot.
func (s *Store) GetCalculation(ctx context.Context, id string) (Calculation, error) {
	var c Calculation
	var profileID sql.NullInt64
	var configJSON, solutionJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, created_at, config_json, solution_json
		FROM calculations
		WHERE id = ?
	`, id).Scan(&c.ID, &profileID, &c.CreatedAt, &configJSON, &solutionJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Calculation{}, ErrNotFound
	}
	if err != nil {
		return Calculation{}, fmt.Errorf("query calculation: %w", err)
	}

	c.ProfileID = idPtr(profileID)
	if err := json.Unmarshal([]byte(configJSON), &c.Config); err != nil {
		return Calculation{}, fmt.Errorf("decode calculation config: %w", err)
	}
	if err := json.Unmarshal([]byte(solutionJSON), &c.Solution); err != nil {
		return Calculation{}, fmt.Errorf("decode calculation solution: %w", err)
	}
	return c, nil
}

// ListCalculations returns the newest calculations whose product name contains query.
// A non-positive limit uses the default page size.
func (s *Store) ListCalculations(ctx context.Context, query string, limit int) ([]CalculationSummary, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	query = strings.TrimSpace(query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			id, profile_id, created_at, product_name, mode, strategy,
			selling_price, net_profit, net_margin, feasible
		FROM calculations
		WHERE (? = '' OR product_name LIKE ?)
		ORDER BY datetime(created_at) DESC, rowid DESC
		LIMIT ?
	`, query, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("query calculations: %w", err)
	}
	defer rows.Close()

	items := make([]CalculationSummary, 0)
	for rows.Next() {
		var item CalculationSummary
		var profileID sql.NullInt64
		if err := rows.Scan(
			&item.ID, &profileID, &item.CreatedAt, &item.ProductName, &item.Mode, &item.Strategy,
			&item.SellingPrice, &item.NetProfit, &item.NetMargin, &item.Feasible,
		); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		item.ProfileID = idPtr(profileID)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calculations: %w", err)
	}

	return items, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(id sql.NullInt64) *int64 {
	if !id.Valid {
		return nil
	}
	v := id.Int64
	return &v
}
