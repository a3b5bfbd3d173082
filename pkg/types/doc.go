// Package types defines the shared Go types used by both the agent and server.
// These are the canonical in-memory representations of a status snapshot,
// and their JSON form is exactly what the agent writes to status.json.
package types
