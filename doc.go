// Package ciwait watches the CI checks of a branch, pull request or
// commit reference until they reach a terminal state, while keeping the
// query rate on the CI provider low.
//
// ciwait is designed as an SDK-first library: the CLI under cmd/ciwait
// is a thin frontend over the same [Watcher] any program can embed.
//
// # Quick Start
//
// Create a watcher and run a session with graceful shutdown:
//
//	w, _ := ciwait.New("feature-branch")
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	outcome, err := w.Start(ctx) // blocks until terminal state or cancel
//
// # Configuration
//
// Sessions are configured with an explicit [config.Config] resolved once
// at startup from defaults, an optional YAML file, and per-repository
// overrides stored in git config under the "ci-wait." prefix:
//
//	cfg := config.Default().FromStore(store).Normalize()
//	w, err := ciwait.New("128",
//	    ciwait.WithConfig(cfg),
//	    ciwait.WithStatusCallback(func(u ciwait.StatusUpdate) {
//	        fmt.Printf("%d%% done\n", u.Percent)
//	    }),
//	)
//
// # How polling adapts
//
// The watcher remembers how long past runs took (a bounded rolling
// history per outcome, kept in git config) and derives a deliberately
// low-biased median from it. The median drives two things: a progress
// bar estimating completion, and the switch from the slow polling tier
// to the fast one as a run approaches its expected duration. Polling is
// also fast while CI has not yet reported any checks, to minimise the
// latency to the first signal.
//
// # Architecture
//
// The internal packages are not part of the public API:
//
//   - internal/elapse: seconds ⇄ "3m 45s" codec
//   - internal/checks: provider response parsing
//   - internal/history: rolling durations and the median estimate
//   - internal/estimate: progress percentage and bar rendering
//   - internal/schedule: fast/slow sleep decision
//   - internal/gh: GitHub CLI provider and target resolution
//   - internal/gitcfg: git config persistence
//   - internal/notify: bell, sound, desktop and hook side effects
package ciwait
