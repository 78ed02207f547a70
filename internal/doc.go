// Package internal documents the Photo Prestiges server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, problem responses, and routing
// - domain: entities and their invariants (users, contests, submissions)
// - storage: repository interfaces, the postgres implementation, migrations
// - messaging: broker connection, routes, wire payloads, publisher, consumer
// - outbox: transactional event intents and the publishing relay
// - replica: consumer handlers that keep per-service entity copies current
// - contest, registration, auth, clock, scoring, mail: the owning services
// - jobs: background workers and retry policy
// - app: per-service process assembly
// - config, email, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
