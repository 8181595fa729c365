// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

/*
schema.go - Database Schema Management

Tables:
  - users: registered accounts with unique usernames
  - questions: poll questions, each owned by a user
  - answers: selectable options, at least two per question
  - votes: the vote ledger; UNIQUE(question_id, user_id) enforces
    at-most-one vote per user per question
  - question_reactions: like/dislike ledger; UNIQUE(user_id, question_id)
    backs the upsert where the latest reaction wins

Integer IDs come from per-table sequences since DuckDB has no
auto-increment column type. All statements are idempotent so startup can
run them unconditionally.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the sequences and tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the schema creation SQL statements.
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_users_id`,
		`CREATE SEQUENCE IF NOT EXISTS seq_questions_id`,
		`CREATE SEQUENCE IF NOT EXISTS seq_answers_id`,
		`CREATE SEQUENCE IF NOT EXISTS seq_votes_id`,
		`CREATE SEQUENCE IF NOT EXISTS seq_reactions_id`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_users_id'),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS questions (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_questions_id'),
			text TEXT NOT NULL,
			user_id BIGINT NOT NULL,
			category TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS answers (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_answers_id'),
			question_id BIGINT NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		// The UNIQUE constraint is the vote ledger invariant. Inserts use
		// ON CONFLICT DO NOTHING and check RowsAffected, so duplicate
		// votes lose the race at the storage layer.
		`CREATE TABLE IF NOT EXISTS votes (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_votes_id'),
			question_id BIGINT NOT NULL,
			answer_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (question_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS question_reactions (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_reactions_id'),
			user_id BIGINT NOT NULL,
			question_id BIGINT NOT NULL,
			reaction TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (user_id, question_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_questions_user ON questions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_created ON questions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_answer ON votes(answer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reactions_question ON question_reactions(question_id)`,
	}
}
