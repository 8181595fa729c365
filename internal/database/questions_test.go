// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package database

import (
	"context"
	"errors"
	"testing"
)

func TestCreateQuestion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, db, "asker")

	q, err := db.CreateQuestion(ctx, "Tabs or spaces?", []string{"Tabs", "Spaces", "Both"}, userID, "engineering")
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	if q.ID == 0 {
		t.Error("expected non-zero question ID")
	}
	if q.Text != "Tabs or spaces?" {
		t.Errorf("text = %q, want %q", q.Text, "Tabs or spaces?")
	}
	if q.Category != "engineering" {
		t.Errorf("category = %q, want engineering", q.Category)
	}
	if q.UserID != userID {
		t.Errorf("user_id = %d, want %d", q.UserID, userID)
	}
	if len(q.Answers) != 3 {
		t.Fatalf("got %d answers, want 3", len(q.Answers))
	}

	// Answers keep submission order.
	want := []string{"Tabs", "Spaces", "Both"}
	for i, a := range q.Answers {
		if a.Text != want[i] {
			t.Errorf("answer[%d] = %q, want %q", i, a.Text, want[i])
		}
		if a.Votes != 0 {
			t.Errorf("answer[%d] votes = %d, want 0 for a fresh question", i, a.Votes)
		}
	}
}

func TestCreateQuestion_TooFewAnswers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, db, "asker")

	tests := []struct {
		name    string
		answers []string
	}{
		{"no answers", nil},
		{"one answer", []string{"Only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.CreateQuestion(ctx, "Valid?", tt.answers, userID, "")
			if !errors.Is(err, ErrTooFewAnswers) {
				t.Errorf("expected ErrTooFewAnswers, got %v", err)
			}
		})
	}
}

func TestUpdateQuestion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")

	qID, answers := createTestQuestion(t, db, owner, "Original?")

	if err := db.CastVote(ctx, qID, answers[0], voter); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	updated, err := db.UpdateQuestion(ctx, qID, "Revised?", []string{"A", "B", "C"}, owner)
	if err != nil {
		t.Fatalf("UpdateQuestion failed: %v", err)
	}
	if updated.Text != "Revised?" {
		t.Errorf("text = %q, want Revised?", updated.Text)
	}
	if len(updated.Answers) != 3 {
		t.Fatalf("got %d answers, want 3", len(updated.Answers))
	}

	// Answers are replaced wholesale, so the old IDs must be gone.
	for _, a := range updated.Answers {
		for _, old := range answers {
			if a.ID == old {
				t.Errorf("answer ID %d survived the replacement", old)
			}
		}
	}

	// Votes referenced the replaced answers and are cleared with them.
	votes, err := db.VoteCount(ctx, qID)
	if err != nil {
		t.Fatalf("VoteCount failed: %v", err)
	}
	if votes != 0 {
		t.Errorf("vote count = %d, want 0 after answer replacement", votes)
	}

	// The voter can vote again on the fresh answers.
	if err := db.CastVote(ctx, qID, updated.Answers[0].ID, voter); err != nil {
		t.Errorf("re-vote after update failed: %v", err)
	}
}

func TestUpdateQuestion_TooFewAnswers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")

	qID, answers := createTestQuestion(t, db, owner, "Original?")

	if err := db.CastVote(ctx, qID, answers[0], voter); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}

	tests := []struct {
		name    string
		answers []string
	}{
		{"no answers", nil},
		{"one answer", []string{"Only"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.UpdateQuestion(ctx, qID, "Shrunk?", tt.answers, owner)
			if !errors.Is(err, ErrTooFewAnswers) {
				t.Errorf("expected ErrTooFewAnswers, got %v", err)
			}
		})
	}

	// The rejected update must not touch the question, its answers, or
	// its votes.
	q, err := db.QuestionByID(ctx, qID)
	if err != nil {
		t.Fatalf("QuestionByID failed: %v", err)
	}
	if q.Text != "Original?" {
		t.Errorf("text = %q, want the original text", q.Text)
	}
	if len(q.Answers) != len(answers) {
		t.Fatalf("got %d answers, want %d", len(q.Answers), len(answers))
	}
	for i, a := range q.Answers {
		if a.ID != answers[i] {
			t.Errorf("answer[%d] ID = %d, want %d", i, a.ID, answers[i])
		}
	}

	votes, err := db.VoteCount(ctx, qID)
	if err != nil {
		t.Fatalf("VoteCount failed: %v", err)
	}
	if votes != 1 {
		t.Errorf("vote count = %d, want 1 to survive the rejected update", votes)
	}
}

func TestUpdateQuestion_Ownership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")

	qID, _ := createTestQuestion(t, db, owner, "Mine?")

	_, err := db.UpdateQuestion(ctx, qID, "Hijacked?", []string{"A", "B"}, other)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	_, err = db.UpdateQuestion(ctx, 99999, "Ghost?", []string{"A", "B"}, owner)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown question, got %v", err)
	}
}

func TestDeleteQuestion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")

	qID, answers := createTestQuestion(t, db, owner, "Doomed?")
	if err := db.CastVote(ctx, qID, answers[0], voter); err != nil {
		t.Fatalf("CastVote failed: %v", err)
	}
	if err := db.React(ctx, qID, voter, "like"); err != nil {
		t.Fatalf("React failed: %v", err)
	}

	if err := db.DeleteQuestion(ctx, qID, owner, false); err != nil {
		t.Fatalf("DeleteQuestion failed: %v", err)
	}

	if _, err := db.QuestionByID(ctx, qID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected question to be gone, got %v", err)
	}

	// The voter can still participate elsewhere; their account survives.
	if _, err := db.UserByID(ctx, voter); err != nil {
		t.Errorf("voter account should survive question deletion: %v", err)
	}
}

func TestDeleteQuestion_Authorization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	other := createTestUser(t, db, "other")
	admin := createTestUser(t, db, "admin")

	qID, _ := createTestQuestion(t, db, owner, "Protected?")

	if err := db.DeleteQuestion(ctx, qID, other, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	// Admins may delete questions they do not own.
	if err := db.DeleteQuestion(ctx, qID, admin, true); err != nil {
		t.Errorf("admin delete failed: %v", err)
	}

	if err := db.DeleteQuestion(ctx, 99999, owner, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown question, got %v", err)
	}
}

func TestListQuestions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	q1, _ := createTestQuestion(t, db, alice, "First?")
	q2, _ := createTestQuestion(t, db, bob, "Second?")
	q3, _ := createTestQuestion(t, db, alice, "Third?")

	all, err := db.ListQuestions(ctx)
	if err != nil {
		t.Fatalf("ListQuestions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d questions, want 3", len(all))
	}
	for _, q := range all {
		if len(q.Answers) != 2 {
			t.Errorf("question %d has %d answers, want 2", q.ID, len(q.Answers))
		}
	}

	mine, err := db.ListQuestionsByUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListQuestionsByUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d questions for alice, want 2", len(mine))
	}
	got := map[int64]bool{}
	for _, q := range mine {
		got[q.ID] = true
	}
	if !got[q1] || !got[q3] {
		t.Errorf("expected questions %d and %d, got %v", q1, q3, got)
	}
	if got[q2] {
		t.Errorf("bob's question %d leaked into alice's list", q2)
	}
}

func TestQuestionByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := createTestUser(t, db, "asker")
	qID, _ := createTestQuestion(t, db, userID, "Findable?")

	q, err := db.QuestionByID(ctx, qID)
	if err != nil {
		t.Fatalf("QuestionByID failed: %v", err)
	}
	if q.ID != qID {
		t.Errorf("ID = %d, want %d", q.ID, qID)
	}
	if len(q.Answers) != 2 {
		t.Errorf("got %d answers, want 2", len(q.Answers))
	}

	if _, err := db.QuestionByID(ctx, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
