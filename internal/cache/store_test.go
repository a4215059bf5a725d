package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/penaltycache/internal/constraint"
)

func testEntry(variables, feasible string) Entry {
	return Entry{
		Key:        constraint.Key{Variables: variables, Feasible: feasible},
		Problem:    "p cnf 2 2\n-1 2 0\n-2 1 0\n",
		Ancillas:   1,
		Objectives: map[int]float64{0: 2, 1: 0},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='penalty_models'",
	).Scan(&name)
	if err != nil {
		t.Errorf("penalty_models table not found after idempotent opens: %v", err)
	}
}

func TestOpen_SchemaSurvivesExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	if err := s1.Put(ctx, testEntry("v0", "1")); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	s1.Close()

	// Reopening must leave existing entries untouched.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	count, err := s2.Len(ctx)
	if err != nil {
		t.Fatalf("Len() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Len() = %d, want 1", count)
	}
}

// Concurrent first opens race on schema creation; all must resolve to
// "schema exists, proceed".
func TestOpen_ConcurrentCreation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	const openers = 4
	errs := make(chan error, openers)
	for i := 0; i < openers; i++ {
		go func() {
			s, err := Open(path)
			if err == nil {
				s.Close()
			}
			errs <- err
		}()
	}

	for i := 0; i < openers; i++ {
		if err := <-errs; err != nil {
			t.Errorf("concurrent Open() failed: %v", err)
		}
	}
}

func TestPut_FirstWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	first := testEntry("v0", "1")
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("first Put() failed: %v", err)
	}

	second := testEntry("v0", "1")
	second.Problem = "p cnf 1 0\n"
	second.Ancillas = 99
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	got, ok, err := s.Get(ctx, first.Key)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("entry not found")
	}
	if got.Problem != first.Problem || got.Ancillas != first.Ancillas {
		t.Errorf("second Put overwrote entry: got %+v", got)
	}
}

func TestGet_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(context.Background(), constraint.Key{Variables: "vX", Feasible: "0"})
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() reported a missing key as present")
	}
}

func TestGet_RoundTripsObjectives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	entry := testEntry("v0,v1", "0,2")
	entry.Objectives = map[int]float64{0: 0, 1: 2, 2: 0}
	if err := s.Put(ctx, entry); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	got, ok, err := s.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("entry not found")
	}
	if len(got.Objectives) != 3 || got.Objectives[1] != 2 {
		t.Errorf("objectives round trip: got %v", got.Objectives)
	}
}
