// Package fetch downloads third-party release dependencies with
// etag-conditional caching.
//
// The etag cache is a best-effort memoization table persisted between
// runs; losing it only costs a re-download. Network failures are reported
// to the caller, which treats the artifact as absent rather than aborting
// the whole run.
package fetch
