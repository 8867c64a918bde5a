// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The record flow is rename, cleanup, final check, then merge. Validation
// is pure and runs on a worker pool; merging serialises per identity key
// through a driven.KeyLocker and writes each record in its own store
// transaction.
package services
