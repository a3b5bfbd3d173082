// Package receiver feeds snapshots into the server's store from two sources.
//
// Receiver implements wire.SnapshotServiceServer, the gRPC endpoint agents
// publish to. It rejects requests without targets or with an unknown status
// (codes.InvalidArgument) and stores the rest. Authentication is enforced
// upstream by the gRPC server interceptor (see package auth).
//
// WatchFile follows a status.json written by a co-located agent. It loads
// the file once at start and again after every write, create or rename in
// its directory. Malformed content is logged and the previous snapshot kept.
package receiver
