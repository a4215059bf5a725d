package constraint

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Instance is one cardinality constraint: an ordered multiset of
// variable names and the set of admissible true-counts.
//
// Variables may repeat; a repeated name contributes its multiplicity to
// the count. Feasible is kept sorted ascending with duplicates removed.
type Instance struct {
	Variables []string
	Feasible  []int
}

// New validates and builds an Instance. Variables must be non-empty and
// Feasible must be non-empty with no negative counts. Feasible is
// copied, sorted and deduplicated; Variables is copied as-is (order is
// part of the identity).
func New(variables []string, feasible []int) (Instance, error) {
	if len(variables) == 0 {
		return Instance{}, fmt.Errorf("constraint: no variables")
	}
	if len(feasible) == 0 {
		return Instance{}, fmt.Errorf("constraint: empty selection set")
	}
	for _, c := range feasible {
		if c < 0 {
			return Instance{}, fmt.Errorf("constraint: negative count %d in selection set", c)
		}
	}

	vars := make([]string, len(variables))
	copy(vars, variables)

	counts := make([]int, len(feasible))
	copy(counts, feasible)
	sort.Ints(counts)
	counts = dedupe(counts)

	return Instance{Variables: vars, Feasible: counts}, nil
}

// dedupe removes adjacent duplicates from a sorted slice.
func dedupe(sorted []int) []int {
	out := sorted[:0]
	for i, c := range sorted {
		if i == 0 || c != sorted[i-1] {
			out = append(out, c)
		}
	}
	return out
}

// Key is the canonical cache identity of an Instance. Both fields are
// deterministic text encodings suitable for use as primary key columns.
type Key struct {
	Variables string
	Feasible  string
}

// Key computes the canonical identity of the instance.
//
// Variable names are NFC-normalized before joining so that two spellings
// of the same name cannot produce distinct cache keys. Counts are
// already sorted by construction.
func (in Instance) Key() Key {
	names := make([]string, len(in.Variables))
	for i, v := range in.Variables {
		names[i] = norm.NFC.String(v)
	}

	counts := make([]string, len(in.Feasible))
	for i, c := range in.Feasible {
		counts[i] = strconv.Itoa(c)
	}

	return Key{
		Variables: strings.Join(names, ","),
		Feasible:  strings.Join(counts, ","),
	}
}

// Equal reports value equality of two instances.
func (in Instance) Equal(other Instance) bool {
	if len(in.Variables) != len(other.Variables) || len(in.Feasible) != len(other.Feasible) {
		return false
	}
	for i := range in.Variables {
		if in.Variables[i] != other.Variables[i] {
			return false
		}
	}
	for i := range in.Feasible {
		if in.Feasible[i] != other.Feasible[i] {
			return false
		}
	}
	return true
}

// String renders the instance for logs and test failure messages.
func (in Instance) String() string {
	k := in.Key()
	return fmt.Sprintf("vars=[%s] feasible={%s}", k.Variables, k.Feasible)
}
