// Package encoder converts a constraint instance into its encoded
// optimization problem: a CNF encoding of the cardinality constraint,
// the number of ancilla variables the encoding introduced, and a map
// from each achievable count to the objective value assigned to it.
//
// The Encoder interface is the boundary the rest of the system depends
// on; callers treat it as an opaque, possibly slow, possibly failing
// collaborator. SATEncoder is the default implementation, built on the
// gophersat solver.
package encoder
