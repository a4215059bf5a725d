// Package enumerate generates the full space of cardinality constraint
// instances in a fixed, restartable order, with skip/step partitioning
// so that independent runs can each cover a disjoint slice of the space.
//
// The sequence is deterministic but not numerically monotonic: the
// guaranteed property is that re-running with identical parameters
// reproduces the identical sequence, and that the union of all Step
// partitions (Skip = 0..Step-1) is exactly the unpartitioned sequence
// with no duplicates and no gaps.
package enumerate
