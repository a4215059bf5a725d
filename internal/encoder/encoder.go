package encoder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/penaltycache/internal/constraint"
)

// Model is the encoded problem for one constraint instance.
//
// Clauses is a CNF over variables 1..Decision+Ancillas, where 1..Decision
// are the distinct decision variables in order of first appearance and
// the rest are ancillas introduced by the encoding. Objectives maps each
// achievable count to its objective value; counts that no assignment can
// produce are absent.
type Model struct {
	Decision   int
	Ancillas   int
	Clauses    [][]int
	Objectives map[int]float64
}

// DIMACS renders the clause set in DIMACS CNF text form, the
// serialization used by the cache schema.
func (m Model) DIMACS() string {
	var b strings.Builder
	fmt.Fprintf(&b, "p cnf %d %d\n", m.Decision+m.Ancillas, len(m.Clauses))
	for _, clause := range m.Clauses {
		for _, lit := range clause {
			b.WriteString(strconv.Itoa(lit))
			b.WriteByte(' ')
		}
		b.WriteString("0\n")
	}
	return b.String()
}

// Encoder builds the encoded problem for one constraint instance.
// Implementations must be safe for concurrent use: the dispatcher calls
// Encode from multiple workers.
type Encoder interface {
	Encode(ctx context.Context, inst constraint.Instance) (Model, error)
}

// EncodeError reports that a single constraint instance could not be
// converted. It is never fatal to a dispatch run; the instance is simply
// not cached.
type EncodeError struct {
	Key    constraint.Key
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encode %s/%s: %s: %v", e.Key.Variables, e.Key.Feasible, e.Reason, e.Err)
	}
	return fmt.Sprintf("encode %s/%s: %s", e.Key.Variables, e.Key.Feasible, e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsEncodeError reports whether err is an EncodeError, unwrapping as
// needed.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}
