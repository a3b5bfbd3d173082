// Package monitor runs one evaluation cycle across every configured target.
//
// Driver.Run fetches each target's feed with at most Concurrency requests in
// flight (golang.org/x/sync/errgroup), bounds each fetch with its own timeout,
// and evaluates the entries with compute.Evaluate. Workers never touch shared
// state: each writes only its own slot of the report, and the driver merges
// once all workers have returned.
//
// A failing target never affects another. Fetch errors and timeouts become a
// TargetError on that target's report row, and its result is compute.Fallback.
package monitor
