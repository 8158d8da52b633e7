// Package checks parses the CI provider's tab-separated check listing
// into count summaries used by the poll loop and the progress estimator.
package checks
