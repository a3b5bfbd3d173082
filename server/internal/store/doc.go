// Package store holds the most recent status snapshot in memory.
//
// There is no history: every Put replaces the previous snapshot in full, so a
// target missing from the new snapshot disappears. The store records where the
// snapshot came from and when it arrived, and reports it stale once StaleAfter
// passes without a replacement. Subscribers registered with OnPut run after
// every replacement, outside the lock.
package store
