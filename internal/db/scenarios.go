package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"scenario-seeder/internal/scenario"
)

var ErrScenarioNotFound = errors.New("scenario not found")

const scenariosDDL = `
CREATE TABLE IF NOT EXISTS scenarios (
  map_name   text        NOT NULL,
  name       text        NOT NULL,
  body       jsonb       NOT NULL,
  people     integer     NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now(),
  PRIMARY KEY (map_name, name)
)`

// EnsureSchema creates the scenarios table if it doesn't exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, scenariosDDL); err != nil {
		return fmt.Errorf("create scenarios table: %w", err)
	}
	return nil
}

func LoadScenario(ctx context.Context, db *sql.DB, mapName, name string) (*scenario.Scenario, error) {
	var body []byte
	err := db.QueryRowContext(ctx,
		`SELECT body FROM scenarios WHERE map_name = $1 AND name = $2`, mapName, name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q on %q: %w", name, mapName, ErrScenarioNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query scenario: %w", err)
	}
	return decodeScenario(body)
}

// SaveScenario stores s under its map and name, replacing any earlier copy.
func SaveScenario(ctx context.Context, db *sql.DB, s *scenario.Scenario) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode %q: %w", s.Name, err)
	}
	q := `
INSERT INTO scenarios (map_name, name, body, people)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (map_name, name)
DO UPDATE SET body = EXCLUDED.body, people = EXCLUDED.people, updated_at = now()`
	if _, err := db.ExecContext(ctx, q, s.MapName, s.Name, string(body), len(s.People)); err != nil {
		return fmt.Errorf("save scenario %q: %w", s.Name, err)
	}
	return nil
}

// ListScenarios returns the names of the scenarios stored for a map.
func ListScenarios(ctx context.Context, db *sql.DB, mapName string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM scenarios WHERE map_name = $1 ORDER BY name`, mapName)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func decodeScenario(body []byte) (*scenario.Scenario, error) {
	var s scenario.Scenario
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if s.Name == "" || s.MapName == "" {
		return nil, errors.New("decode scenario: missing scenario_name or map_name")
	}
	return &s, nil
}
