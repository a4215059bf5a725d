package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/penaltycache/internal/constraint"
)

// Get retrieves the entry for a key. The second return value reports
// whether the key was present.
func (s *Store) Get(ctx context.Context, key constraint.Key) (Entry, bool, error) {
	var (
		problem    string
		ancillas   int
		objectives string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT problem, ancillas, objectives
		FROM penalty_models
		WHERE variables = ? AND feasible = ?
	`, key.Variables, key.Feasible).Scan(&problem, &ancillas, &objectives)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get entry: %w", err)
	}

	parsed, err := unmarshalObjectives(objectives)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get entry: %w", err)
	}

	return Entry{
		Key:        key,
		Problem:    problem,
		Ancillas:   ancillas,
		Objectives: parsed,
	}, true, nil
}

// Len returns the number of entries in the store.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM penalty_models`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Keys returns every key in the store in primary-key order.
func (s *Store) Keys(ctx context.Context) ([]constraint.Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT variables, feasible
		FROM penalty_models
		ORDER BY variables, feasible
	`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []constraint.Key
	for rows.Next() {
		var k constraint.Key
		if err := rows.Scan(&k.Variables, &k.Feasible); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	return keys, nil
}
