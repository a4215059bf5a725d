package enumerate

import (
	"fmt"
	"iter"
	"sort"

	"github.com/roach88/penaltycache/internal/constraint"
)

// Spec selects a partition of the enumeration space.
//
// Skip and Step implement residue partitioning over the flattened
// instance index: an instance with zero-based index idx is emitted iff
// idx >= Skip and (idx-Skip) mod Step == 0. Running Step enumerators
// with Skip = 0..Step-1 covers the space exactly once.
type Spec struct {
	MinVars int
	MaxVars int
	Skip    int
	Step    int
}

// Validate checks the partition parameters.
func (s Spec) Validate() error {
	if s.MinVars < 1 {
		return fmt.Errorf("enumerate: min_vars must be >= 1, got %d", s.MinVars)
	}
	if s.MaxVars < s.MinVars {
		return fmt.Errorf("enumerate: max_vars %d < min_vars %d", s.MaxVars, s.MinVars)
	}
	if s.Skip < 0 {
		return fmt.Errorf("enumerate: skip must be >= 0, got %d", s.Skip)
	}
	if s.Step < 1 {
		return fmt.Errorf("enumerate: step must be >= 1, got %d", s.Step)
	}
	return nil
}

// Tallies returns every non-decreasing sequence of nElts non-negative
// integers summing to total, each exactly once, in a deterministic
// order.
//
// The first element is chosen from total down to 0 and the remainder is
// generated recursively; candidates that are not sorted are discarded,
// which is what guarantees exactly-once emission of each partition.
func Tallies(nElts, total int) [][]int {
	if nElts == 0 {
		if total == 0 {
			return [][]int{{}}
		}
		return nil
	}

	var out [][]int
	for first := total; first >= 0; first-- {
		for _, rest := range Tallies(nElts-1, total-first) {
			tally := append([]int{first}, rest...)
			if sort.IntsAreSorted(tally) {
				out = append(out, tally)
			}
		}
	}
	return out
}

// SelectionSet decodes a subset encoding into the selection set it
// names. bits must be in [1, 2^(numVars+1)-1]; bit position i selects
// count i, for i in 0..numVars.
func SelectionSet(bits, numVars int) []int {
	var set []int
	for i := 0; i <= numVars; i++ {
		if bits&(1<<i) != 0 {
			set = append(set, i)
		}
	}
	return set
}

// variableNames expands a tally into the positional variable multiset:
// tally[i] repetitions of the i-th variable name.
func variableNames(tally []int) []string {
	var names []string
	for i, count := range tally {
		name := fmt.Sprintf("v%d", i)
		for range count {
			names = append(names, name)
		}
	}
	return names
}

// All returns the lazy partitioned sequence of constraint instances for
// spec. The caller must have validated spec; an invalid spec yields an
// empty sequence.
//
// Order: outer loop over num_vars, middle loop over the selection-set
// encoding, inner loop over tallies. The skip/step filter applies to
// the flattened index of that loop nest.
func All(spec Spec) iter.Seq[constraint.Instance] {
	return func(yield func(constraint.Instance) bool) {
		if spec.Validate() != nil {
			return
		}

		idx := 0
		for numVars := spec.MinVars; numVars <= spec.MaxVars; numVars++ {
			for bits := 1; bits <= 1<<(numVars+1)-1; bits++ {
				set := SelectionSet(bits, numVars)
				for _, tally := range Tallies(numVars, numVars) {
					emit := idx >= spec.Skip && (idx-spec.Skip)%spec.Step == 0
					idx++
					if !emit {
						continue
					}

					inst, err := constraint.New(variableNames(tally), set)
					if err != nil {
						// Unreachable for numVars >= 1: every tally sums
						// to numVars and every decoded set is non-empty.
						continue
					}
					if !yield(inst) {
						return
					}
				}
			}
		}
	}
}
