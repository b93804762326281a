// Package queue persists render jobs in SQLite and exposes helpers for
// tracking their lifecycle.
//
// The Store manages database connections, schema initialization, progress
// updates, and recovery of jobs left mid-render by a crashed process. Jobs
// mirror the renderer's state machine (preparing, recording, finalizing) so the
// CLI can show live and historical status without extra bookkeeping.
//
// The database is treated as a job history rather than an archive. Schema
// changes bump the version in schema.go; users delete the database file to adopt the
// new schema.
package queue
