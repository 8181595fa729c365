// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pollarium/pollarium/internal/metrics"
	"github.com/pollarium/pollarium/internal/models"
)

// CreateUser inserts a new user and returns the stored row.
// Returns ErrUsernameTaken when the username is already registered.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	start := time.Now()

	row := db.conn.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash)
		 VALUES (?, ?)
		 RETURNING id, username, password_hash, is_admin, created_at`,
		username, passwordHash)

	user, err := scanUser(row)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	return user, nil
}

// UserByUsername fetches a user by username.
// Returns ErrNotFound when no such user exists.
func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin, created_at
		 FROM users WHERE username = ?`, username)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %q: %w", username, err)
	}
	return user, nil
}

// UserByID fetches a user by ID.
// Returns ErrNotFound when no such user exists.
func (db *DB) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin, created_at
		 FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return user, nil
}

// ListUsers returns all users with their question counts, newest first.
// Used by the admin surface only.
func (db *DB) ListUsers(ctx context.Context) ([]models.AdminUser, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, u.is_admin, u.created_at,
		        (SELECT COUNT(*) FROM questions q WHERE q.user_id = u.id) AS question_count
		 FROM users u
		 ORDER BY u.created_at DESC, u.id DESC`)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeWithLog(rows, "users rows")

	users := make([]models.AdminUser, 0)
	for rows.Next() {
		var u models.AdminUser
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt, &u.QuestionCount); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// SetAdmin updates the admin flag of a user.
// Returns ErrNotFound when no such user exists.
func (db *DB) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_admin = ? WHERE id = ?`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to update admin flag for user %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a user and everything they own in one transaction:
// their votes and reactions everywhere, then each owned question with its
// reactions, votes, and answers, then the user row itself.
// Returns ErrNotFound when no such user exists.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	tx, err := db.beginTx(ctx)
	if err != nil {
		return err
	}

	var exists int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&exists); err != nil {
		rollbackQuietly(tx)
		return fmt.Errorf("failed to check user %d: %w", id, err)
	}
	if exists == 0 {
		rollbackQuietly(tx)
		return ErrNotFound
	}

	// Ledger rows authored by the user, on anyone's questions.
	// Then the full cascade under each question the user owns.
	deletes := []string{
		`DELETE FROM votes WHERE user_id = ?`,
		`DELETE FROM question_reactions WHERE user_id = ?`,
		`DELETE FROM question_reactions WHERE question_id IN (SELECT id FROM questions WHERE user_id = ?)`,
		`DELETE FROM votes WHERE question_id IN (SELECT id FROM questions WHERE user_id = ?)`,
		`DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE user_id = ?)`,
		`DELETE FROM questions WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	}
	for _, query := range deletes {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("failed to delete user %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
