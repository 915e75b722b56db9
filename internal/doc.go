// Package internal documents the USLY server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, rendering, and routing
// - domain: business logic for accounts, events, signups, and profiles
// - storage: database access and repositories (pgx + Postgres)
// - media: uploaded image storage
// - auth, audit, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
