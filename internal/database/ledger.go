// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

/*
ledger.go - Vote and Reaction Ledger

The ledger never relies on check-then-insert for its invariants:

  - Votes use INSERT ... ON CONFLICT DO NOTHING against the
    UNIQUE(question_id, user_id) constraint and report ErrAlreadyVoted
    when zero rows were affected. Concurrent duplicate votes from the
    same user serialize at the constraint, so exactly one wins.
  - Reactions use INSERT ... ON CONFLICT DO UPDATE against the
    UNIQUE(user_id, question_id) constraint, so the latest reaction wins
    without history.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pollarium/pollarium/internal/metrics"
	"github.com/pollarium/pollarium/internal/models"
)

// CastVote records a vote by userID for answerID on questionID.
//
// Returns ErrNotFound when the answer does not exist or does not belong
// to the question, and ErrAlreadyVoted when the user already holds a
// vote on the question.
func (db *DB) CastVote(ctx context.Context, questionID, answerID, userID int64) error {
	var belongs int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE id = ? AND question_id = ?`,
		answerID, questionID).Scan(&belongs)
	if err != nil {
		return fmt.Errorf("failed to verify answer %d: %w", answerID, err)
	}
	if belongs == 0 {
		return ErrNotFound
	}

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO votes (question_id, answer_id, user_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT DO NOTHING`,
		questionID, answerID, userID)
	metrics.RecordDBQuery("insert", "votes", time.Since(start), err)
	if err != nil {
		// Some engines raise instead of suppressing on conflict paths.
		if isUniqueViolation(err) {
			metrics.VotesRejectedDuplicate.Inc()
			return ErrAlreadyVoted
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		metrics.VotesRejectedDuplicate.Inc()
		return ErrAlreadyVoted
	}

	metrics.VotesCast.Inc()
	return nil
}

// React records or replaces the reaction of userID on questionID.
//
// Returns ErrInvalidReaction for values outside like/dislike and
// ErrNotFound when the question does not exist.
func (db *DB) React(ctx context.Context, questionID, userID int64, reaction string) error {
	if reaction != models.ReactionLike && reaction != models.ReactionDislike {
		return ErrInvalidReaction
	}

	var exists int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE id = ?`, questionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to verify question %d: %w", questionID, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO question_reactions (user_id, question_id, reaction)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id, question_id)
		 DO UPDATE SET reaction = excluded.reaction, created_at = now()`,
		userID, questionID, reaction)
	metrics.RecordDBQuery("upsert", "question_reactions", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to record reaction: %w", err)
	}

	metrics.ReactionsRecorded.WithLabelValues(reaction).Inc()
	return nil
}

// ReactionCounts returns the zero-filled like/dislike totals for one
// question. A question nobody reacted to yields {0, 0}, not an error.
func (db *DB) ReactionCounts(ctx context.Context, questionID int64) (models.ReactionCounts, error) {
	var counts models.ReactionCounts

	rows, err := db.conn.QueryContext(ctx,
		`SELECT reaction, COUNT(*)
		 FROM question_reactions
		 WHERE question_id = ?
		 GROUP BY reaction`, questionID)
	if err != nil {
		return counts, fmt.Errorf("failed to query reaction counts: %w", err)
	}
	defer closeWithLog(rows, "reaction rows")

	for rows.Next() {
		var reaction string
		var n int64
		if err := rows.Scan(&reaction, &n); err != nil {
			return counts, fmt.Errorf("failed to scan reaction row: %w", err)
		}
		switch reaction {
		case models.ReactionLike:
			counts.Like = n
		case models.ReactionDislike:
			counts.Dislike = n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("failed to iterate reaction rows: %w", err)
	}

	return counts, nil
}

// ReactionCountsForQuestions returns zero-filled counts for a batch of
// question IDs in one query. An empty input returns an empty map without
// touching the store.
func (db *DB) ReactionCountsForQuestions(ctx context.Context, ids []int64) (map[int64]models.ReactionCounts, error) {
	result := make(map[int64]models.ReactionCounts, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
		result[id] = models.ReactionCounts{}
	}

	query := fmt.Sprintf(`
		SELECT question_id, reaction, COUNT(*)
		FROM question_reactions
		WHERE question_id IN (%s)
		GROUP BY question_id, reaction`, strings.Join(placeholders, ", "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batched reaction counts: %w", err)
	}
	defer closeWithLog(rows, "reaction rows")

	for rows.Next() {
		var questionID int64
		var reaction string
		var n int64
		if err := rows.Scan(&questionID, &reaction, &n); err != nil {
			return nil, fmt.Errorf("failed to scan reaction row: %w", err)
		}
		counts := result[questionID]
		switch reaction {
		case models.ReactionLike:
			counts.Like = n
		case models.ReactionDislike:
			counts.Dislike = n
		}
		result[questionID] = counts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reaction rows: %w", err)
	}

	return result, nil
}

// VoteCount returns the total number of votes on a question.
func (db *DB) VoteCount(ctx context.Context, questionID int64) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE question_id = ?`, questionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}
