// Package queue persists analysis items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats queries,
// heartbeat tracking, stuck-item recovery, and status transitions that mirror
// the public workflow enum. Queue items capture interviewee identity, working
// files, scores, progress, and review flags so stages can coordinate without
// additional state.
//
// The database is treated as transient storage for in-flight jobs rather than
// a long-term archive; final scores live in MongoDB and MariaDB. Schema changes
// bump the version in schema.go; users clear the database to adopt the new
// schema.
package queue
