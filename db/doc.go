// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

	conn, err := db.Open(db.TypeSQLite, "data.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite is served by modernc.org/sqlite (pure Go), PostgreSQL by lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - elections: id, name
  - participants: candidates per election with a votes counter
  - voters: one row per verified voter id (voter_id UNIQUE)
  - votes: append-only vote rows

# Constraints

votes has UNIQUE (election_id, voter_id). This is what actually prevents a
double vote when two requests race; the application check before insert
only produces a friendlier error.

participants.votes is CHECKed non-negative and only ever incremented in
the same transaction as a vote insert.
*/
package db
