package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/penaltycache/internal/cache"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	*RootOptions
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "merge <target> <source>...",
		Short: "Consolidate partitioned caches into one target store",
		Long: `Merge the entries of one or more source caches into the target cache,
sequentially, first-write-wins per key. The target is created if it
does not exist. Each source merge commits as a single transaction, so
a failed merge leaves the target untouched.

The run is rejected before any merge work if the target is also listed
as a source or if any source does not exist.

Example:
  penaltycache merge merged.db part0.db part1.db part2.db`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(opts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runMerge(opts *MergeOptions, target string, sources []string, cmd *cobra.Command) error {
	// Validate the whole source list up front: a bad source anywhere
	// aborts the run before the target is opened or touched.
	if err := validateSources(target, sources); err != nil {
		return err
	}

	store, err := cache.Open(target)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open target cache", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("error closing target cache", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	for _, source := range sources {
		slog.Info("merging", "source", source, "target", target)
		if err := store.Merge(ctx, source); err != nil {
			code := ExitFailure
			if cache.IsSourceNotFound(err) || cache.IsSourceEqualsTarget(err) {
				code = ExitCommandError
			}
			return WrapExitError(code, fmt.Sprintf("merge of %s failed", source), err)
		}
	}

	count, err := store.Len(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count merged entries", err)
	}

	slog.Info("merge complete", "sources", len(sources), "entries", count)
	fmt.Fprintf(cmd.OutOrStdout(), "merged %d source(s) into %s: %d entries\n", len(sources), target, count)

	return nil
}

// validateSources enforces the merge preconditions before any store is
// opened: the target must not be among the sources and every source
// must exist.
func validateSources(target string, sources []string) error {
	targetInfo, targetErr := os.Stat(target)

	for _, source := range sources {
		info, err := os.Stat(source)
		if err != nil {
			if os.IsNotExist(err) {
				return NewExitError(ExitCommandError, fmt.Sprintf("source %s does not exist", source))
			}
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot stat source %s", source), err)
		}
		if targetErr == nil && os.SameFile(targetInfo, info) {
			return NewExitError(ExitCommandError, fmt.Sprintf("target %s is also listed as a source", target))
		}
		if targetErr != nil && source == target {
			return NewExitError(ExitCommandError, fmt.Sprintf("target %s is also listed as a source", target))
		}
	}

	return nil
}
