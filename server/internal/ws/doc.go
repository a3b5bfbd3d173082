// Package ws implements the WebSocket hub for smokesignal-server.
//
// Hub manages a set of connected clients and pushes the current target list
// to all of them on a fixed interval (5s in production), immediately on
// connect, and whenever Broadcast is called (the server calls it on every
// stored snapshot).
//
// Message format sent to clients:
//
//	{
//	  "event": "targets",
//	  "data":  { "targets": [...], "state": "WARNING", "stale": false, "generated_at": "..." }
//	}
//
// Each entry in targets has the schema of GET /api/v1/targets/{name}.
// Every message is a complete list, so a client that cannot keep up is sent
// only the newest one instead of being disconnected.
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. The endpoint is mounted at /ws/stream by the server.
package ws
