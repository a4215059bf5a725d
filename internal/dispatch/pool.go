package dispatch

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/penaltycache/internal/constraint"
)

// Worker converts one constraint instance. A non-nil error marks that
// single instance as failed; it has no effect on the rest of the run.
type Worker func(ctx context.Context, inst constraint.Instance) error

// Failure records one instance the worker could not convert.
type Failure struct {
	Instance constraint.Instance
	Err      error
}

// Pool runs conversion workers concurrently over an instance stream.
type Pool struct {
	// Workers is the concurrency limit. Values below 1 are treated as 1.
	Workers int

	// Log receives progress and failure events. Advisory only; nil
	// falls back to slog.Default().
	Log *slog.Logger
}

// Run dispatches every instance of the stream to the pool and returns
// the failures, in no particular order. It returns only after the
// stream is exhausted and every dispatched instance has finished,
// successfully or not.
//
// Cancelling ctx stops the pool from pulling further instances;
// in-flight conversions still run to completion (the worker decides
// whether to honor the cancellation itself).
func (p Pool) Run(ctx context.Context, instances iter.Seq[constraint.Instance], work Worker) []Failure {
	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	run := uuid.NewString()

	// Unbuffered: a free worker pulls the next instance, nothing is
	// queued ahead of need.
	feed := make(chan constraint.Instance)
	failc := make(chan Failure)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inst := range feed {
				start := time.Now()
				log.Debug("converting", "run", run, "constraint", inst.String())

				if err := work(ctx, inst); err != nil {
					failc <- Failure{Instance: inst, Err: err}
					log.Warn("conversion failed",
						"run", run,
						"constraint", inst.String(),
						"elapsed", time.Since(start),
						"error", err)
					continue
				}

				log.Debug("converted",
					"run", run,
					"constraint", inst.String(),
					"elapsed", time.Since(start))
			}
		}()
	}

	var failures []Failure
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for f := range failc {
			failures = append(failures, f)
		}
	}()

	for inst := range instances {
		select {
		case feed <- inst:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	close(feed)
	wg.Wait()
	close(failc)
	<-collected

	return failures
}
