// Package constraint defines the value types for cardinality constraint
// instances and their canonical cache identity.
//
// An Instance pairs an ordered multiset of variable names with a
// selection set of admissible counts. Identity is by value: two
// instances with the same variable multiset and the same selection set
// are the same constraint regardless of how or when they were
// enumerated. Key produces the canonical text form used as the cache
// primary key.
package constraint
