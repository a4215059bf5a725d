package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Merge copies every entry present in the store at sourcePath and
// absent (by key) from this store into this store. Entries whose key
// already exists here are left untouched (first-write-wins).
//
// The copy is committed as a single transaction: either all new entries
// from the source are visible afterwards or, on failure, none are and
// the target is exactly as it was.
//
// Merge may be called repeatedly and with multiple sources sequentially
// against the same open store; keys migrated by an earlier merge are
// treated as already present by later ones.
//
// Preconditions are checked before any mutation: sourcePath must exist
// (SOURCE_NOT_FOUND) and must not be this store's own location
// (SOURCE_EQUALS_TARGET).
func (s *Store) Merge(ctx context.Context, sourcePath string) error {
	if samePath(s.path, sourcePath) {
		return &MergeError{Code: ErrCodeSourceEqualsTarget, Target: s.path, Source: sourcePath}
	}
	if _, err := os.Stat(sourcePath); err != nil {
		if os.IsNotExist(err) {
			return &MergeError{Code: ErrCodeSourceNotFound, Target: s.path, Source: sourcePath}
		}
		return fmt.Errorf("merge: stat source: %w", err)
	}

	// ATTACH cannot run inside a transaction, so it brackets one. The
	// store's single-connection pool guarantees the ATTACH, the
	// transaction and the DETACH all see the same connection.
	if _, err := s.db.ExecContext(ctx, `ATTACH DATABASE ? AS src`, sourcePath); err != nil {
		return fmt.Errorf("merge: attach source: %w", err)
	}
	defer func() {
		_, _ = s.db.Exec(`DETACH DATABASE src`)
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("merge: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO main.penalty_models
		(variables, feasible, problem, ancillas, objectives)
		SELECT variables, feasible, problem, ancillas, objectives
		FROM src.penalty_models
	`)
	if err != nil {
		return fmt.Errorf("merge: copy entries: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("merge: commit: %w", err)
	}

	return nil
}

// samePath reports whether two locations name the same file. Falls back
// to lexical comparison when the paths cannot be resolved.
func samePath(a, b string) bool {
	ai, aErr := os.Stat(a)
	bi, bErr := os.Stat(b)
	if aErr == nil && bErr == nil {
		return os.SameFile(ai, bi)
	}

	aAbs, aErr := filepath.Abs(a)
	bAbs, bErr := filepath.Abs(b)
	if aErr != nil || bErr != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aAbs == bAbs
}
