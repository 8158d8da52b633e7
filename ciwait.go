package ciwait

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ciwait/ciwait/config"
	"github.com/ciwait/ciwait/internal/checks"
	"github.com/ciwait/ciwait/internal/elapse"
	"github.com/ciwait/ciwait/internal/estimate"
	"github.com/ciwait/ciwait/internal/gh"
	"github.com/ciwait/ciwait/internal/gitcfg"
	"github.com/ciwait/ciwait/internal/history"
	"github.com/ciwait/ciwait/internal/schedule"
)

// configSection is the git config namespace for persisted settings and
// rolling history.
const configSection = "ci-wait"

// Watcher polls the CI status of a single target until it reaches a
// terminal state.
//
// A Watcher is created with [New] and run with [Watcher.Start], which
// blocks for the whole session:
//
//	w, err := ciwait.New("someone:feature")
//	if err != nil {
//	    slog.Error("failed to create watcher", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	outcome, err := w.Start(ctx)
//
// One Watcher runs one session; it owns all session state exclusively
// and is not safe for concurrent Start calls.
type Watcher struct {
	target      string
	cfg         config.Config
	provider    Provider
	store       Store
	notifier    Notifier
	logger      *slog.Logger
	out         io.Writer
	interactive bool
	callbacks   []func(StatusUpdate)

	// time and sleep are indirected for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	lastLineLen int
}

// New creates a [Watcher] for the given resolved target reference.
//
// Defaults: the gh CLI as provider, the repository's git config as
// store, no notifier, os.Stdout as output, [config.Default] settings.
// The configuration is normalized (clamped to safe polling floors)
// whatever its origin.
//
// Returns an error if the target is empty or any option is invalid.
func New(target string, opts ...Option) (*Watcher, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("target is required")
	}

	wc := &wConfig{cfg: config.Default()}
	for _, opt := range opts {
		if err := opt(wc); err != nil {
			return nil, err
		}
	}

	logger := wc.logger
	if logger == nil {
		logger = slog.Default()
	}
	if wc.provider == nil {
		wc.provider = gh.NewRunner(logger)
	}
	if wc.store == nil {
		wc.store = gitcfg.New(configSection)
	}
	if wc.notifier == nil {
		wc.notifier = noopNotifier{}
	}
	if wc.out == nil {
		wc.out = os.Stdout
	}

	return &Watcher{
		target:      target,
		cfg:         wc.cfg.Normalize(),
		provider:    wc.provider,
		store:       wc.store,
		notifier:    wc.notifier,
		logger:      logger,
		out:         wc.out,
		interactive: wc.interactive,
		callbacks:   wc.callbacks,
		now:         time.Now,
		sleep:       ctxSleep,
	}, nil
}

// Config returns the normalized session configuration.
func (w *Watcher) Config() config.Config {
	return w.cfg
}

// Target returns the watched reference.
func (w *Watcher) Target() string {
	return w.target
}

// Start runs the polling session to a terminal state.
//
// Each iteration queries the provider (best effort), renders progress,
// and decides between success, early failure, timeout and continuing.
// Between iterations the scheduler picks the fast or slow sleep tier.
// On termination the final snapshot's longest check duration is added to
// the outcome category's rolling history and terminal notifications are
// dispatched, unless the session resolved on its very first poll (the
// run was already finished; there is nothing to announce).
//
// The only error Start returns is the context's, when cancelled; every
// other failure mode degrades per the session's error model.
func (w *Watcher) Start(ctx context.Context) (Outcome, error) {
	hist := history.NewStore(w.store, w.cfg.HistorySize, w.logger)

	median := 0
	if w.cfg.HistorySize > 0 {
		median = history.Median(hist.Fetch(history.CategorySuccess))
	}

	w.logger.Info("watch starting",
		"target", w.target,
		"median", elapse.Format(median),
		"timeout_seconds", w.cfg.TimeoutSeconds,
	)

	if w.cfg.BeforePollSeconds > 0 {
		if err := w.sleep(ctx, time.Duration(w.cfg.BeforePollSeconds)*time.Second); err != nil {
			return "", err
		}
	}

	start := w.now()
	iteration := 0
	lastPassed := 0

	for {
		iteration++

		raw, err := w.provider.Checks(ctx, w.target)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// a failed query carries no information; the next tick retries
			w.logger.Debug("status query failed", "error", err)
			raw = ""
		}
		snap := checks.Parse(raw)
		elapsed := int(w.now().Sub(start) / time.Second)

		pct := w.render(iteration, elapsed, snap, median)
		w.invokeCallbacks(StatusUpdate{
			Target:    w.target,
			Iteration: iteration,
			Elapsed:   time.Duration(elapsed) * time.Second,
			Snapshot:  publicSnapshot(snap),
			Percent:   pct,
		})

		if iteration > 1 && snap.Passed > lastPassed {
			w.notifier.Increment()
		}
		lastPassed = snap.Passed

		switch {
		case snap.Done():
			return w.finish(OutcomeSuccess, iteration, snap, hist), nil
		case snap.Failed > 0 && w.cfg.ExitEarlyOnFail:
			return w.finish(OutcomeFailure, iteration, snap, hist), nil
		case elapsed > w.cfg.TimeoutSeconds:
			return w.finish(OutcomeTimeout, iteration, snap, hist), nil
		}

		next := schedule.NextSleep(elapsed, median, snap.Total,
			w.cfg.FastPollSeconds, w.cfg.SlowPollSeconds, w.cfg.FastPollPercent)
		if err := w.sleep(ctx, time.Duration(next)*time.Second); err != nil {
			w.endRedraw()
			return "", err
		}
	}
}

// render writes the progress line for one iteration and returns the
// progress percentage, or -1 when no estimate is available.
//
/// The bar is suppressed on the first iteration when nothing is pending:
// either CI has not started (nothing to estimate against) or the run
// already finished before we began watching.
func (w *Watcher) render(iteration, elapsed int, snap checks.Snapshot, median int) int {
	pct, ok := estimate.Percentage(elapsed, snap.LongestElapsed, median, snap.Pending)
	if !ok {
		pct = -1
	}

	var bar string
	if w.cfg.TryProgressBar && ok && !(iteration == 1 && snap.Pending == 0) {
		bar = estimate.Render(pct, w.cfg.ProgressBarWidth) + "  "
	}

	line := fmt.Sprintf("%s%s  %d checks: %d pending, %d failed, %d passed",
		bar, elapse.Format(elapsed), snap.Total, snap.Pending, snap.Failed, snap.Passed)
	w.writeLine(line)
	return pct
}

// writeLine emits one progress line; in interactive mode it redraws in
// place with a carriage return, padding over the previous line.
func (w *Watcher) writeLine(line string) {
	if !w.interactive {
		fmt.Fprintln(w.out, line)
		return
	}

	pad := ""
	if n := w.lastLineLen - len([]rune(line)); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(w.out, "\r%s%s", line, pad)
	w.lastLineLen = len([]rune(line))
}

// endRedraw terminates an in-place redraw line before normal output
// resumes.
func (w *Watcher) endRedraw() {
	if w.interactive && w.lastLineLen > 0 {
		fmt.Fprintln(w.out)
		w.lastLineLen = 0
	}
}

// finish closes the session: persist the final longest check duration
// into the outcome category's history, report the refreshed median, and
// dispatch terminal notifications. A session that resolved on its first
// poll skips all of it; the result was already decided before we began.
func (w *Watcher) finish(outcome Outcome, iterations int, snap checks.Snapshot, hist *history.Store) Outcome {
	w.endRedraw()

	w.logger.Info("watch finished",
		"target", w.target,
		"outcome", outcome.String(),
		"iterations", iterations,
	)

	if iterations <= 1 {
		return outcome
	}

	category := history.CategoryFailure
	if outcome == OutcomeSuccess {
		category = history.CategorySuccess
	}

	// the slowest individual check is a more stable duration signal than
	// our own wall clock, which includes time before polling began
	duration := snap.LongestElapsed
	if snap.Total == 0 {
		// timed out before CI ever reported; nothing to record
		duration = -1
	}
	newMedian := hist.Update(category, duration, true)
	if w.cfg.HistorySize > 0 && duration >= 0 {
		fmt.Fprintf(w.out, "updated %s median: %s\n", category, elapse.Format(newMedian))
	}

	w.notifier.Terminal(outcome, w.target, publicSnapshot(snap))
	return outcome
}

// invokeCallbacks runs the registered status callbacks with panic
// recovery; observer code can never stop the session.
func (w *Watcher) invokeCallbacks(update StatusUpdate) {
	for _, cb := range w.callbacks {
		w.invokeCallbackSafe(cb, update)
	}
}

func (w *Watcher) invokeCallbackSafe(cb func(StatusUpdate), update StatusUpdate) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("status callback panicked",
				"panic", r,
				"target", update.Target,
			)
		}
	}()
	cb(update)
}

// publicSnapshot converts the parser's snapshot into the public type.
func publicSnapshot(s checks.Snapshot) Snapshot {
	return Snapshot{
		Total:          s.Total,
		Pending:        s.Pending,
		Failed:         s.Failed,
		Passed:         s.Passed,
		LongestElapsed: time.Duration(s.LongestElapsed) * time.Second,
	}
}

// ctxSleep sleeps for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
