// Package publish delivers a completed snapshot to its consumers.
//
// Every Publisher replaces the previously published snapshot in full:
//
//   - FilePublisher writes status.json through a temp file and rename, so a
//     reader never observes a partial document.
//   - GRPCPublisher sends SnapshotService.Publish to smokesignal-server,
//     retrying transient failures with truncated exponential backoff
//     (±25% jitter). Unauthenticated, PermissionDenied and InvalidArgument
//     fail immediately. An API key travels as gRPC metadata.
//   - RedisPublisher SETs the status.json document under one key.
//
// Multi fans out to several publishers and joins their errors. Any failure is
// a failed run: the agent exits non-zero.
package publish
