package ciwait

import (
	"context"
	"time"
)

// Outcome is the terminal state of a watch session.
//
// Outcome is a string type with three predefined values. [OutcomeTimeout]
// shares the failure category with [OutcomeFailure] for history and
// notification purposes; only success runs feed the success statistics.
type Outcome string

const (
	// OutcomeSuccess means every reported check finished and none failed.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure means at least one check failed and the session was
	// configured to stop early on failure.
	OutcomeFailure Outcome = "failure"

	// OutcomeTimeout means the configured session timeout elapsed before
	// the checks reached a terminal state.
	OutcomeTimeout Outcome = "timeout"
)

// String returns the string representation of the outcome.
// This implements the fmt.Stringer interface.
func (o Outcome) String() string {
	return string(o)
}

// Category maps the outcome onto the two-valued partition used for
// run-duration history and notifications: "success" or "failure".
func (o Outcome) Category() string {
	if o == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Snapshot is the aggregated state of the target's checks at one poll.
//
// Pending+Failed+Passed need not sum to Total; providers report
// additional states (skipped, cancelled) that count toward Total only.
type Snapshot struct {
	// Total is the number of checks the provider reported.
	Total int

	// Pending is the number of checks still running or queued.
	Pending int

	// Failed is the number of failed checks.
	Failed int

	// Passed is the number of passed checks.
	Passed int

	// LongestElapsed is the duration of the slowest single check.
	LongestElapsed time.Duration
}

// StatusUpdate is delivered to status callbacks after every poll.
//
// StatusUpdate is immutable and purely informational; callbacks cannot
// influence the session.
type StatusUpdate struct {
	// Target is the watched reference, as resolved at session start.
	Target string

	// Iteration counts polls within this session, starting at 1.
	Iteration int

	// Elapsed is the wall-clock time since the session started.
	Elapsed time.Duration

	// Snapshot is the check-set state this poll observed.
	Snapshot Snapshot

	// Percent is the progress estimate, or -1 when no estimate is
	// available (no usable history).
	Percent int
}

// Provider is the external CI status source.
//
// The gh-backed implementation lives in internal/gh; tests substitute
// fakes. Checks is best-effort: an error from it is absorbed as an empty
// snapshot, never surfaced.
type Provider interface {
	// Checks returns the raw tab-separated check listing for target.
	Checks(ctx context.Context, target string) (string, error)

	// FinalStatus runs the closing pass-through query; the returned exit
	// code becomes the process exit status.
	FinalStatus(ctx context.Context, target string) (listing string, exitCode int)
}

// Notifier receives session events for out-of-band feedback (bell,
// sound, desktop notification, hooks). Implementations must not block:
// the watcher calls these inline from the poll loop and relies on the
// notifier to detach its own work.
type Notifier interface {
	// Increment fires when the passed count grew since the previous poll.
	Increment()

	// Terminal fires once at session end, keyed by outcome category.
	// Suppressed entirely when the session resolved on its first poll.
	Terminal(outcome Outcome, target string, snapshot Snapshot)
}

// Store is the repository-scoped key-value persistence for run-duration
// history. The git config implementation lives in internal/gitcfg.
// A missing key is reported as ok == false, not an error.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Unset(key string) error
}

// noopNotifier is the default when no notifier is configured.
type noopNotifier struct{}

func (noopNotifier) Increment()                         {}
func (noopNotifier) Terminal(Outcome, string, Snapshot) {}
