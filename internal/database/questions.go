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
	"strings"
	"time"

	"github.com/pollarium/pollarium/internal/metrics"
	"github.com/pollarium/pollarium/internal/models"
)

// questionSelect is the shared hydrated projection. Vote and reaction
// totals are correlated subqueries against the ledger tables; the author
// join is LEFT so questions survive odd data without losing rows.
const questionSelect = `
	SELECT q.id, q.text, q.category, q.created_at, q.user_id,
	       COALESCE(u.username, 'unknown') AS author,
	       (SELECT COUNT(*) FROM votes v WHERE v.question_id = q.id) AS votes,
	       (SELECT COUNT(*) FROM question_reactions r
	          WHERE r.question_id = q.id AND r.reaction = 'like') AS likes,
	       (SELECT COUNT(*) FROM question_reactions r
	          WHERE r.question_id = q.id AND r.reaction = 'dislike') AS dislikes
	FROM questions q
	LEFT JOIN users u ON u.id = q.user_id`

// CreateQuestion inserts a question with its answer options in one
// transaction. Returns ErrTooFewAnswers when fewer than two answers are
// given.
func (db *DB) CreateQuestion(ctx context.Context, text string, answers []string, userID int64, category string) (*models.Question, error) {
	if len(answers) < 2 {
		return nil, ErrTooFewAnswers
	}

	start := time.Now()
	tx, err := db.beginTx(ctx)
	if err != nil {
		return nil, err
	}

	var categoryArg any
	if category != "" {
		categoryArg = category
	}

	var questionID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO questions (text, user_id, category)
		 VALUES (?, ?, ?)
		 RETURNING id`,
		text, userID, categoryArg).Scan(&questionID)
	if err != nil {
		rollbackQuietly(tx)
		return nil, fmt.Errorf("failed to insert question: %w", err)
	}

	for _, answer := range answers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (question_id, text) VALUES (?, ?)`,
			questionID, answer); err != nil {
			rollbackQuietly(tx)
			return nil, fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	err = tx.Commit()
	metrics.RecordDBQuery("insert", "questions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to commit question: %w", err)
	}
	metrics.QuestionsCreated.Inc()

	return db.QuestionByID(ctx, questionID)
}

// UpdateQuestion replaces the text and answer set of a question owned by
// userID. The answers are replaced wholesale; existing votes reference
// the old answers and are cleared with them. On any failure the original
// question is left untouched.
//
// Returns ErrNotFound for a missing question, ErrForbidden when userID is
// not the owner, and ErrTooFewAnswers for fewer than two answers.
func (db *DB) UpdateQuestion(ctx context.Context, id int64, text string, answers []string, userID int64) (*models.Question, error) {
	if len(answers) < 2 {
		return nil, ErrTooFewAnswers
	}

	tx, err := db.beginTx(ctx)
	if err != nil {
		return nil, err
	}

	ownerID, err := questionOwner(ctx, tx, id)
	if err != nil {
		rollbackQuietly(tx)
		return nil, err
	}
	if ownerID != userID {
		rollbackQuietly(tx)
		return nil, ErrForbidden
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE questions SET text = ? WHERE id = ?`, text, id); err != nil {
		rollbackQuietly(tx)
		return nil, fmt.Errorf("failed to update question %d: %w", id, err)
	}

	// Votes point at the answers being replaced; they go with them.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM votes WHERE question_id = ?`, id); err != nil {
		rollbackQuietly(tx)
		return nil, fmt.Errorf("failed to clear votes for question %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM answers WHERE question_id = ?`, id); err != nil {
		rollbackQuietly(tx)
		return nil, fmt.Errorf("failed to clear answers for question %d: %w", id, err)
	}

	for _, answer := range answers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (question_id, text) VALUES (?, ?)`,
			id, answer); err != nil {
			rollbackQuietly(tx)
			return nil, fmt.Errorf("failed to insert answer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit question update: %w", err)
	}

	return db.QuestionByID(ctx, id)
}

// DeleteQuestion removes a question and its dependents in one
// transaction, in order: reactions, votes, answers, question. The caller
// must own the question or hold the admin flag.
func (db *DB) DeleteQuestion(ctx context.Context, id, userID int64, admin bool) error {
	tx, err := db.beginTx(ctx)
	if err != nil {
		return err
	}

	ownerID, err := questionOwner(ctx, tx, id)
	if err != nil {
		rollbackQuietly(tx)
		return err
	}
	if ownerID != userID && !admin {
		rollbackQuietly(tx)
		return ErrForbidden
	}

	deletes := []string{
		`DELETE FROM question_reactions WHERE question_id = ?`,
		`DELETE FROM votes WHERE question_id = ?`,
		`DELETE FROM answers WHERE question_id = ?`,
		`DELETE FROM questions WHERE id = ?`,
	}
	for _, query := range deletes {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			rollbackQuietly(tx)
			return fmt.Errorf("failed to delete question %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit question deletion: %w", err)
	}
	metrics.QuestionsDeleted.Inc()
	return nil
}

// QuestionByID fetches one hydrated question.
// Returns ErrNotFound when no such question exists.
func (db *DB) QuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	row := db.conn.QueryRowContext(ctx, questionSelect+` WHERE q.id = ?`, id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch question %d: %w", id, err)
	}

	questions := []models.Question{*q}
	if err := db.attachAnswers(ctx, questions); err != nil {
		return nil, err
	}
	return &questions[0], nil
}

// ListQuestions returns all hydrated questions, newest first.
func (db *DB) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return db.queryQuestions(ctx,
		questionSelect+` ORDER BY q.created_at DESC, q.id DESC`)
}

// ListQuestionsByUser returns the hydrated questions owned by userID,
// newest first.
func (db *DB) ListQuestionsByUser(ctx context.Context, userID int64) ([]models.Question, error) {
	return db.queryQuestions(ctx,
		questionSelect+` WHERE q.user_id = ? ORDER BY q.created_at DESC, q.id DESC`,
		userID)
}

// queryQuestions runs a hydrated question query and attaches answers.
func (db *DB) queryQuestions(ctx context.Context, query string, args ...any) ([]models.Question, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "questions", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	defer closeWithLog(rows, "question rows")

	questions := make([]models.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}
		questions = append(questions, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate question rows: %w", err)
	}

	if err := db.attachAnswers(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// attachAnswers hydrates the Answers slice of each question with one
// batched query, including per-answer vote counts.
func (db *DB) attachAnswers(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	placeholders := make([]string, len(questions))
	args := make([]any, len(questions))
	index := make(map[int64]int, len(questions))
	for i := range questions {
		placeholders[i] = "?"
		args[i] = questions[i].ID
		index[questions[i].ID] = i
		questions[i].Answers = make([]models.Answer, 0)
	}

	query := fmt.Sprintf(`
		SELECT a.question_id, a.id, a.text,
		       (SELECT COUNT(*) FROM votes v WHERE v.answer_id = a.id) AS votes
		FROM answers a
		WHERE a.question_id IN (%s)
		ORDER BY a.id ASC`, strings.Join(placeholders, ", "))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query answers: %w", err)
	}
	defer closeWithLog(rows, "answer rows")

	for rows.Next() {
		var questionID int64
		var a models.Answer
		if err := rows.Scan(&questionID, &a.ID, &a.Text, &a.Votes); err != nil {
			return fmt.Errorf("failed to scan answer row: %w", err)
		}
		if i, ok := index[questionID]; ok {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate answer rows: %w", err)
	}
	return nil
}

// questionOwner returns the owner of a question inside a transaction.
// Returns ErrNotFound when the question does not exist.
func questionOwner(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	var ownerID int64
	err := tx.QueryRowContext(ctx,
		`SELECT user_id FROM questions WHERE id = ?`, id).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to fetch owner of question %d: %w", id, err)
	}
	return ownerID, nil
}

// scanQuestion scans one hydrated question row. Engagement is the
// trending score: votes + 2*likes.
func scanQuestion(s scanner) (*models.Question, error) {
	var q models.Question
	var category sql.NullString
	if err := s.Scan(&q.ID, &q.Text, &category, &q.CreatedAt, &q.UserID,
		&q.Author, &q.Votes, &q.Likes, &q.Dislikes); err != nil {
		return nil, err
	}
	q.Category = category.String
	q.Engagement = q.Votes + 2*q.Likes
	return &q, nil
}
