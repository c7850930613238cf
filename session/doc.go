// Package session binds reasoning trees to the strategy instances that
// operate on them. A session is the unit of isolation: each one owns its own
// tree and its own strategy state, and processes steps strictly one at a
// time.
//
// Add additional backends (Redis, Postgres, etc.) in sub-packages without
// changing any calling code; only the wiring layer needs to decide which
// implementation to instantiate.
package session
