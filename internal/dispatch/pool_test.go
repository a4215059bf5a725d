package dispatch

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/penaltycache/internal/constraint"
)

func instances(t *testing.T, n int) []constraint.Instance {
	t.Helper()
	out := make([]constraint.Instance, n)
	for i := range out {
		inst, err := constraint.New([]string{fmt.Sprintf("v%d", i)}, []int{1})
		require.NoError(t, err)
		out[i] = inst
	}
	return out
}

func stream(insts []constraint.Instance) iter.Seq[constraint.Instance] {
	return func(yield func(constraint.Instance) bool) {
		for _, inst := range insts {
			if !yield(inst) {
				return
			}
		}
	}
}

func TestPool_ProcessesEveryInstance(t *testing.T) {
	insts := instances(t, 20)

	var mu sync.Mutex
	seen := make(map[constraint.Key]bool)

	pool := Pool{Workers: 4}
	failures := pool.Run(context.Background(), stream(insts), func(_ context.Context, inst constraint.Instance) error {
		mu.Lock()
		seen[inst.Key()] = true
		mu.Unlock()
		return nil
	})

	assert.Empty(t, failures)
	assert.Len(t, seen, len(insts))
}

// One deterministic failure among N instances: the other N-1 are still
// converted and exactly one failure is reported.
func TestPool_FailSoft(t *testing.T) {
	insts := instances(t, 10)
	poison := insts[3].Key()
	boom := errors.New("encoder blew up")

	var mu sync.Mutex
	converted := 0

	pool := Pool{Workers: 3}
	failures := pool.Run(context.Background(), stream(insts), func(_ context.Context, inst constraint.Instance) error {
		if inst.Key() == poison {
			return boom
		}
		mu.Lock()
		converted++
		mu.Unlock()
		return nil
	})

	require.Len(t, failures, 1)
	assert.Equal(t, poison, failures[0].Instance.Key())
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Equal(t, len(insts)-1, converted)
}

func TestPool_AllFailuresReported(t *testing.T) {
	insts := instances(t, 5)

	pool := Pool{Workers: 2}
	failures := pool.Run(context.Background(), stream(insts), func(_ context.Context, inst constraint.Instance) error {
		return fmt.Errorf("no luck for %s", inst)
	})

	assert.Len(t, failures, len(insts))
}

func TestPool_HonorsWorkerLimit(t *testing.T) {
	insts := instances(t, 16)

	var mu sync.Mutex
	active, peak := 0, 0

	pool := Pool{Workers: 3}
	pool.Run(context.Background(), stream(insts), func(_ context.Context, _ constraint.Instance) error {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	assert.LessOrEqual(t, peak, 3)
	assert.Positive(t, peak)
}

func TestPool_ZeroWorkersRunsSequentially(t *testing.T) {
	insts := instances(t, 4)

	count := 0
	pool := Pool{}
	failures := pool.Run(context.Background(), stream(insts), func(_ context.Context, _ constraint.Instance) error {
		count++ // single worker: no race
		return nil
	})

	assert.Empty(t, failures)
	assert.Equal(t, 4, count)
}

func TestPool_CancelStopsFeeding(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	insts := instances(t, 1000)

	var mu sync.Mutex
	processed := 0

	pool := Pool{Workers: 2}
	pool.Run(ctx, stream(insts), func(_ context.Context, _ constraint.Instance) error {
		mu.Lock()
		processed++
		if processed == 5 {
			cancel()
		}
		mu.Unlock()
		return nil
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Less(t, processed, len(insts), "cancellation should stop the stream early")
}
