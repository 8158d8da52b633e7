package checks

import (
	"strings"

	"github.com/ciwait/ciwait/internal/elapse"
)

// Snapshot is the aggregate state of all checks for a target at one point
// in time, as interpreted from a single provider query.
//
// Pending+Failed+Passed need not sum to Total: the provider may report
// additional states (skipped, cancelled) that count toward Total only.
// Snapshots are never mutated, only superseded by the next poll.
type Snapshot struct {
	// Total is the number of checks the provider reported.
	Total int

	// Pending is the number of checks still running or queued.
	Pending int

	// Failed is the number of checks whose status contains "fail".
	Failed int

	// Passed is the number of checks whose status contains "pass".
	Passed int

	// LongestElapsed is the largest single check duration in seconds,
	// 0 if no checks were reported.
	LongestElapsed int
}

// Done reports whether every reported check finished cleanly: at least one
// check exists, none are pending, none failed.
func (s Snapshot) Done() bool {
	return s.Total > 0 && s.Pending == 0 && s.Failed == 0
}

// Parse interprets one raw provider response into a [Snapshot].
//
// The expected input is one tab-separated row per check:
//
//	<name>\t<status>\t<pretty-duration>\t...
//
// Status tokens are matched as: exactly "pending", any string containing
// "fail", or any string containing "pass" (fail/pass case-insensitively).
// Rows with fewer than two columns are ignored. An empty or unparseable
// response yields the zero Snapshot, never an error; a failed provider
// query and "no checks yet" are indistinguishable here on purpose.
func Parse(raw string) Snapshot {
	var snap Snapshot

	for _, line := range strings.Split(raw, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 2 || strings.TrimSpace(cols[0]) == "" {
			continue
		}

		snap.Total++

		switch status := cols[1]; {
		case status == "pending":
			snap.Pending++
		case strings.Contains(strings.ToLower(status), "fail"):
			snap.Failed++
		case strings.Contains(strings.ToLower(status), "pass"):
			snap.Passed++
		}

		// The duration column decodes to 0 when absent or malformed, so
		// the running maximum reproduces a version-aware sort of the
		// pretty-duration column ("10m ..." above "9m ...") without one.
		if len(cols) >= 3 {
			if d := elapse.Parse(cols[2]); d > snap.LongestElapsed {
				snap.LongestElapsed = d
			}
		}
	}

	return snap
}
