// Package elapse converts between integer second counts and the pretty
// "3m 45s" duration form used by the CI provider's check listing and by
// the persisted run-duration history.
//
// Both directions are pure functions. Parse fails closed: unrecognized
// input decodes to 0 rather than returning an error, so a malformed cell
// can never abort a polling session.
package elapse
