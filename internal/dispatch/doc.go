// Package dispatch fans a lazy stream of constraint instances out to a
// fixed-size pool of conversion workers.
//
// Dispatch is fail-soft: a worker failure is captured and reported, and
// never interrupts the dispatch of the remaining instances. The pool
// hands out one instance at a time (no batching) because individual
// conversions vary enormously in cost.
package dispatch
