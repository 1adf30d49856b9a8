// Package history records finished conversion sessions in SQLite.
//
// Each session.Summary becomes one row in sessions plus one row per output
// track in session_tracks. The database is an audit log for the CLI's
// history command; nothing in the conversion path reads it back. Schema
// changes bump schemaVersion in schema.go and users delete the database to
// adopt them.
package history
