// Package database manages the SQLite connection and schema migrations.
//
// SQLite is deliberate for a single-node home gateway: one writer, WAL mode
// for concurrent readers, no external service to operate. Migrations are
// embedded SQL files applied in version order, each in its own transaction.
package database
