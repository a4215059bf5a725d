package cache

import (
	"context"
	"fmt"
)

// Put inserts an entry into the store.
// Uses INSERT OR IGNORE for first-write-wins semantics: if the key is
// already present the existing entry is left untouched and no error is
// returned. Values re-derived for the same key are assumed semantically
// equivalent.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	objectives, err := marshalObjectives(entry.Objectives)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO penalty_models
		(variables, feasible, problem, ancillas, objectives)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(variables, feasible) DO NOTHING
	`,
		entry.Key.Variables,
		entry.Key.Feasible,
		entry.Problem,
		entry.Ancillas,
		objectives,
	)
	if err != nil {
		return fmt.Errorf("put entry: %w", err)
	}

	return nil
}
