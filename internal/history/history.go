package history

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// Category partitions run-duration history by outcome.
type Category string

const (
	// CategorySuccess collects durations of runs that finished green.
	CategorySuccess Category = "success"

	// CategoryFailure collects durations of runs that failed or timed out.
	CategoryFailure Category = "failure"
)

// key returns the persisted key for a category's duration list.
func (c Category) key() string {
	return "rolling-elapsed-" + string(c)
}

// KV is the narrow persistence interface the store runs on.
//
// The concrete implementation is the repository-scoped git config store
// (internal/gitcfg); [MemoryKV] backs tests and the selftest command.
// Implementations report a missing key as ("", false, nil), not an error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Unset(key string) error
}

// Store keeps, per outcome category, a bounded rolling sequence of past run
// durations (in seconds, oldest first) and derives a median estimate from it.
//
// The sequence holds at most the retention cap; insertion trims from the
// front first. A cap of 0 disables history tracking entirely. The store is
// read once at session start and written once at session end; concurrent
// sessions on the same repository are last-writer-wins.
type Store struct {
	kv     KV
	cap    int
	logger *slog.Logger
}

// NewStore creates a rolling history [Store] over the given key-value
// backend with the given retention cap. A nil logger falls back to
// [slog.Default].
func NewStore(kv KV, cap int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, cap: cap, logger: logger}
}

// Fetch returns the stored duration sequence for a category, oldest first.
//
// Absent storage yields an empty sequence, never an error. Entries that do
// not parse as non-negative integers are skipped; a damaged store degrades,
// it does not abort.
func (s *Store) Fetch(category Category) []int {
	raw, ok, err := s.kv.Get(category.key())
	if err != nil {
		s.logger.Debug("history fetch failed", "category", string(category), "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var out []int
	for _, field := range strings.Fields(raw) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			s.logger.Debug("skipping malformed history entry", "category", string(category), "entry", field)
			continue
		}
		out = append(out, n)
	}
	return out
}

// Clear removes all persisted history for a category. Clearing an absent
// category is a no-op.
func (s *Store) Clear(category Category) error {
	return s.kv.Unset(category.key())
}

// Update appends a new duration to a category's sequence, trimming the
// stored history to its most recent cap-1 entries first, and persists the
// result. When wantMedian is set, the median estimate of the new sequence
// is returned; otherwise the return value is 0 and meaningless.
//
// A negative seconds value means "no duration observed" and is a no-op.
// With a retention cap of 0 the store is disabled: nothing is persisted and
// a requested median is 0.
func (s *Store) Update(category Category, seconds int, wantMedian bool) int {
	if seconds < 0 || s.cap == 0 {
		return 0
	}

	values := s.Fetch(category)
	if excess := len(values) - (s.cap - 1); excess > 0 {
		values = values[excess:]
	}
	values = append(values, seconds)

	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = strconv.Itoa(v)
	}
	if err := s.kv.Set(category.key(), strings.Join(encoded, " ")); err != nil {
		// best effort: a failed write loses one sample, nothing else
		s.logger.Debug("history update failed", "category", string(category), "error", err)
	}

	if wantMedian {
		return Median(values)
	}
	return 0
}

// Median returns the value at ascending rank max(1, floor(n/2)), 1-indexed,
// of the given durations, or 0 for an empty sequence.
//
// This sits one rank below the textbook median for even n and for odd n>1.
// The poll scheduler's fast-poll threshold is tuned against this exact
// rank selection, so it is kept as is.
func Median(values []int) int {
	if len(values) == 0 {
		return 0
	}

	sorted := append([]int(nil), values...)
	sort.Ints(sorted)

	rank := len(sorted) / 2
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}
