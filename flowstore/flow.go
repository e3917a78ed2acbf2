// CLAUDE:SUMMARY CRUD operations for the flows table — save (upsert), get, list summaries, delete.
package flowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hazyhaar/recflow/flow"
)

// Summary is the listing view of a stored flow.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     int    `json:"version"`
	StepCount   int    `json:"step_count"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Save upserts a flow. The flow's own id and timestamps are authoritative;
// repeated saves of the same session overwrite the previous row.
func (s *Store) Save(ctx context.Context, f *flow.Flow) error {
	if f == nil || f.ID == "" {
		return fmt.Errorf("flowstore: save: flow with empty id")
	}

	steps, err := flow.MarshalSteps(f.Steps)
	if err != nil {
		return fmt.Errorf("flowstore: marshal steps: %w", err)
	}
	vars, err := json.Marshal(f.Variables)
	if err != nil {
		return fmt.Errorf("flowstore: marshal variables: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO flows (id, name, description, version, steps, variables, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			version = excluded.version,
			steps = excluded.steps,
			variables = excluded.variables,
			updated_at = excluded.updated_at`,
		f.ID, f.Name, f.Description, f.Version, string(steps), string(vars),
		f.Meta.CreatedAt, f.Meta.UpdatedAt,
	)
	return err
}

// Get retrieves a flow by id. Returns (nil, nil) when absent.
func (s *Store) Get(ctx context.Context, id string) (*flow.Flow, error) {
	f := &flow.Flow{}
	var steps, vars string

	err := s.DB.QueryRowContext(ctx, `
		SELECT id, name, description, version, steps, variables, created_at, updated_at
		FROM flows WHERE id = ?`, id).Scan(
		&f.ID, &f.Name, &f.Description, &f.Version, &steps, &vars,
		&f.Meta.CreatedAt, &f.Meta.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f.Steps, err = flow.UnmarshalSteps([]byte(steps))
	if err != nil {
		return nil, fmt.Errorf("flowstore: unmarshal steps: %w", err)
	}
	if err := json.Unmarshal([]byte(vars), &f.Variables); err != nil {
		return nil, fmt.Errorf("flowstore: unmarshal variables: %w", err)
	}
	return f, nil
}

// List returns flow summaries, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, description, version, steps, created_at, updated_at
		FROM flows ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var steps string
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Description, &sum.Version,
			&steps, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		var parsed []flow.Step
		if err := json.Unmarshal([]byte(steps), &parsed); err == nil {
			sum.StepCount = len(parsed)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes a flow. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	return err
}
