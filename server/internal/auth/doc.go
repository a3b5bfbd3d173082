// Package auth guards smokesignal-server's gRPC and HTTP endpoints with a
// shared API key.
//
// Guard is built from the server auth config. When the mode is not "apikey"
// or the key resolves to an empty string, everything passes through, which
// suits local development. Otherwise:
//
//   - UnaryInterceptor rejects calls whose metadata lacks the key with
//     codes.Unauthenticated.
//   - Middleware rejects HTTP requests without the key header with 401.
//     Paths passed as exempt (health probes, /metrics) are never checked.
//
// Keys are compared in constant time.
package auth
