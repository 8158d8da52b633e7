// Package history persists a bounded rolling sequence of past CI run
// durations per outcome category and derives the low-biased median
// estimate that drives progress display and poll scheduling.
package history
