package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/penaltycache/internal/cache"
	"github.com/roach88/penaltycache/internal/constraint"
	"github.com/roach88/penaltycache/internal/dispatch"
	"github.com/roach88/penaltycache/internal/encoder"
	"github.com/roach88/penaltycache/internal/enumerate"
)

// PopulateOptions holds flags for the populate command.
type PopulateOptions struct {
	*RootOptions
	Workers    int
	ConfigPath string

	// Encoder allows overriding the problem encoder (for testing).
	// If nil, defaults to encoder.SATEncoder.
	Encoder encoder.Encoder
}

// NewPopulateCommand creates the populate command.
func NewPopulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PopulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "populate <min_vars> <max_vars> <skip> <step>",
		Short: "Enumerate a partition of the constraint space and cache its encodings",
		Long: `Enumerate every cardinality constraint in the given partition, encode
each one, and persist the results.

The partition is the skip/step residue slice of the full enumeration:
running step processes with skip = 0..step-1 covers the space exactly
once with no overlap, each writing its own cache for a later merge.

The persistence location comes from $` + EnvDatabase + ` (or the config
file). If neither is set, populate still runs every conversion but
persists nothing.

Example:
  ` + EnvDatabase + `=./part0.db penaltycache populate 1 4 0 2 --workers 8`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPopulate(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent conversions (default: number of CPUs)")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	return cmd
}

func runPopulate(opts *PopulateOptions, args []string, cmd *cobra.Command) error {
	spec, err := parseSpec(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid partition", err)
	}

	var cfg Config
	if opts.ConfigPath != "" {
		cfg, err = LoadConfig(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = cfg.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// A missing persistence location is a warning, not a failure: the
	// run proceeds without durable effect (useful for benchmarking).
	var store *cache.Store
	if dbPath := resolveDatabase(cfg); dbPath == "" {
		slog.Warn("no persistence location configured, running without persisting",
			"env", EnvDatabase)
	} else {
		store, err = cache.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open cache", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("error closing cache", "error", closeErr)
			}
		}()
		slog.Info("cache ready", "path", dbPath)
	}

	enc := opts.Encoder
	if enc == nil {
		enc = encoder.SATEncoder{}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, draining in-flight conversions", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("population starting",
		"min_vars", spec.MinVars,
		"max_vars", spec.MaxVars,
		"skip", spec.Skip,
		"step", spec.Step,
		"workers", workers)

	pool := dispatch.Pool{Workers: workers, Log: slog.Default()}
	failures := pool.Run(ctx, enumerate.All(spec), func(ctx context.Context, inst constraint.Instance) error {
		model, err := enc.Encode(ctx, inst)
		if err != nil {
			return err
		}
		if store == nil {
			return nil
		}
		return store.Put(ctx, cache.Entry{
			Key:        inst.Key(),
			Problem:    model.DIMACS(),
			Ancillas:   model.Ancillas,
			Objectives: model.Objectives,
		})
	})

	// Fail-soft: per-instance failures were already reported by the
	// pool and do not fail the run.
	slog.Info("population complete", "failures", len(failures))
	fmt.Fprintf(cmd.OutOrStdout(), "population complete: %d conversion failure(s)\n", len(failures))

	return nil
}

// parseSpec parses the four positional arguments of populate.
func parseSpec(args []string) (enumerate.Spec, error) {
	values := make([]int, len(args))
	names := []string{"min_vars", "max_vars", "skip", "step"}
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return enumerate.Spec{}, fmt.Errorf("%s: not an integer: %q", names[i], arg)
		}
		values[i] = v
	}

	spec := enumerate.Spec{
		MinVars: values[0],
		MaxVars: values[1],
		Skip:    values[2],
		Step:    values[3],
	}
	if err := spec.Validate(); err != nil {
		return enumerate.Spec{}, err
	}
	return spec, nil
}
