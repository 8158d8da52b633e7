// Package schedule decides how long the poll loop sleeps between
// provider queries. Polling cost is paid only when a query is likely to
// be informative: near the expected completion time, or while waiting
// for CI to report its first check. Everything in between backs off to
// the slow tier to bound provider load.
package schedule

// NextSleep returns the next sleep duration in seconds.
//
// The fast tier is chosen when elapsed has reached fastPercent percent of
// the historical median (the run is close to its expected end, so raise the
// sampling resolution), or when the provider has reported no checks at all
// yet (minimise latency to the first signal). Otherwise the slow tier
// applies. A zero median means "no history" and never triggers the
// near-completion branch.
func NextSleep(elapsed, median, totalChecks, fastSeconds, slowSeconds, fastPercent int) int {
	if median > 0 && elapsed*100 >= median*fastPercent {
		return fastSeconds
	}
	if totalChecks == 0 {
		return fastSeconds
	}
	return slowSeconds
}
