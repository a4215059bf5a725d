package encoder

import (
	"context"

	"github.com/crillab/gophersat/solver"

	"github.com/roach88/penaltycache/internal/constraint"
)

// infeasibleGap is the objective assigned to achievable counts outside
// the selection set. Feasible counts sit at the ground value 0.
const infeasibleGap = 2.0

// SATEncoder encodes a cardinality constraint as a sequential-counter
// CNF (Sinz 2005) and probes it with a SAT solver to discover which
// counts any assignment can actually produce.
//
// Repeated variable names share one decision variable, so a repeated
// name contributes its multiplicity to the count; counts in the gaps
// (e.g. 1 for the multiset [v1,v1]) come back unsat and are left out of
// the objective map.
//
// The zero value is ready to use and safe for concurrent Encode calls:
// the encoder holds no state across calls.
type SATEncoder struct{}

// Encode implements Encoder.
func (SATEncoder) Encode(ctx context.Context, inst constraint.Instance) (Model, error) {
	key := inst.Key()

	n := len(inst.Variables)
	if n == 0 {
		return Model{}, &EncodeError{Key: key, Reason: "no variables"}
	}

	inputs, decision := inputLiterals(inst.Variables)
	counter := newCounter(inputs, decision)

	objectives := make(map[int]float64)
	feasible := make(map[int]bool, len(inst.Feasible))
	for _, c := range inst.Feasible {
		feasible[c] = true
	}

	for count := 0; count <= n; count++ {
		if err := ctx.Err(); err != nil {
			return Model{}, &EncodeError{Key: key, Reason: "cancelled", Err: err}
		}
		if !counter.achievable(count) {
			continue
		}
		if feasible[count] {
			objectives[count] = 0
		} else {
			objectives[count] = infeasibleGap
		}
	}

	ground := false
	for c := range objectives {
		if feasible[c] {
			ground = true
			break
		}
	}
	if !ground {
		return Model{}, &EncodeError{Key: key, Reason: "no achievable count is in the selection set"}
	}

	return Model{
		Decision:   decision,
		Ancillas:   counter.ancillas,
		Clauses:    counter.clauses,
		Objectives: objectives,
	}, nil
}

// inputLiterals maps each position of the variable multiset to the
// decision variable of its name (1-based, in order of first
// appearance) and returns the number of distinct decision variables.
func inputLiterals(variables []string) ([]int, int) {
	ids := make(map[string]int, len(variables))
	inputs := make([]int, len(variables))
	for i, name := range variables {
		id, ok := ids[name]
		if !ok {
			id = len(ids) + 1
			ids[name] = id
		}
		inputs[i] = id
	}
	return inputs, len(ids)
}

// counter is a sequential-counter cardinality network. Register
// variable r(i,j) is true iff at least j of the first i inputs are
// true, for 1 <= j <= i <= n.
type counter struct {
	n        int
	decision int
	ancillas int
	clauses  [][]int
}

func newCounter(inputs []int, decision int) *counter {
	n := len(inputs)
	c := &counter{n: n, decision: decision, ancillas: n * (n + 1) / 2}

	// Register numbering: r(i,j) follows the decision variables in row
	// order, j ranging 1..i within row i.
	reg := func(i, j int) int {
		return decision + i*(i-1)/2 + j
	}

	for i := 1; i <= n; i++ {
		x := inputs[i-1]
		for j := 1; j <= i; j++ {
			r := reg(i, j)

			// r(i,j) <- r(i-1,j)
			if j <= i-1 {
				c.clauses = append(c.clauses, []int{-reg(i - 1, j), r})
			}
			// r(i,j) <- x_i AND r(i-1,j-1); r(i-1,0) is vacuously true.
			if j == 1 {
				c.clauses = append(c.clauses, []int{-x, r})
			} else if j-1 <= i-1 {
				c.clauses = append(c.clauses, []int{-x, -reg(i - 1, j - 1), r})
			}

			// r(i,j) -> r(i-1,j) OR x_i
			to := []int{-r}
			if j <= i-1 {
				to = append(to, reg(i-1, j))
			}
			to = append(to, x)
			c.clauses = append(c.clauses, to)

			// r(i,j) -> r(i-1,j) OR r(i-1,j-1); trivially true when
			// j-1 == 0, and the r(i-1,j-1) literal drops when j-1 > i-1.
			if j-1 >= 1 {
				to = []int{-r}
				if j <= i-1 {
					to = append(to, reg(i-1, j))
				}
				if j-1 <= i-1 {
					to = append(to, reg(i-1, j-1))
				}
				c.clauses = append(c.clauses, to)
			}
		}
	}

	return c
}

// atLeast returns the register asserting "count >= j" over all inputs.
func (c *counter) atLeast(j int) int {
	return c.decision + c.n*(c.n-1)/2 + j
}

// achievable reports whether some assignment to the decision variables
// produces exactly the given count, by asserting the count against the
// counter network and solving.
func (c *counter) achievable(count int) bool {
	clauses := make([][]int, len(c.clauses), len(c.clauses)+2)
	copy(clauses, c.clauses)

	if count == 0 {
		clauses = append(clauses, []int{-c.atLeast(1)})
	} else {
		clauses = append(clauses, []int{c.atLeast(count)})
		if count < c.n {
			clauses = append(clauses, []int{-c.atLeast(count + 1)})
		}
	}

	pb := solver.ParseSlice(clauses)
	s := solver.New(pb)
	return s.Solve() == solver.Sat
}
