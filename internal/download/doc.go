// Package download runs one media download end to end.
//
// Runner.Run probes the URL, resolves the height and fps policy, and walks a
// fixed sequence of strategies: a progressive stream, then a split video-only
// plus audio pair, then the delegate's generic "best" selection. Audio mode
// skips the policy and fetches an m4a stream directly. Every outcome, failures
// included, is returned as a Result whose String form is the newline-delimited
// status block callers parse.
//
// Runs sharing a working directory are serialized with a file lock, and each
// run carries a uuid run id through its logs and the history ledger.
package download
