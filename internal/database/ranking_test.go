// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package database

import (
	"context"
	"testing"
	"time"

	"github.com/pollarium/pollarium/internal/models"
)

// seedVotes creates n fresh users and votes them all onto answerID.
func seedVotes(t *testing.T, db *DB, qID, answerID int64, n int, prefix string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		voter := createTestUser(t, db, uniqueUsername(prefix, i))
		if err := db.CastVote(ctx, qID, answerID, voter); err != nil {
			t.Fatalf("seed vote %d failed: %v", i, err)
		}
	}
}

// seedReactions creates n fresh users and records the given reaction for
// each of them on qID.
func seedReactions(t *testing.T, db *DB, qID int64, reaction string, n int, prefix string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		reactor := createTestUser(t, db, uniqueUsername(prefix, i))
		if err := db.React(ctx, qID, reactor, reaction); err != nil {
			t.Fatalf("seed reaction %d failed: %v", i, err)
		}
	}
}

// backdateQuestion rewrites created_at so time window filters can be
// exercised without sleeping.
func backdateQuestion(t *testing.T, db *DB, qID int64, createdAt time.Time) {
	t.Helper()
	_, err := db.Conn().ExecContext(context.Background(),
		`UPDATE questions SET created_at = ? WHERE id = ?`, createdAt, qID)
	if err != nil {
		t.Fatalf("failed to backdate question %d: %v", qID, err)
	}
}

func questionIDs(questions []models.Question) []int64 {
	ids := make([]int64, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func assertOrder(t *testing.T, got []models.Question, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d questions (%v), want %d (%v)", len(got), questionIDs(got), len(want), want)
	}
	for i, q := range got {
		if q.ID != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, questionIDs(got), want)
		}
	}
}

func TestTopQuestions_MostVotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, a1 := createTestQuestion(t, db, owner, "Two votes?")
	q2, a2 := createTestQuestion(t, db, owner, "Three votes?")
	q3, _ := createTestQuestion(t, db, owner, "No votes?")

	seedVotes(t, db, q1, a1[0], 2, "v1u")
	seedVotes(t, db, q2, a2[0], 3, "v2u")

	got, err := db.TopQuestions(ctx, models.TopOptions{Sort: models.TopSortMostVotes})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	assertOrder(t, got, []int64{q2, q1, q3})

	if got[0].Votes != 3 {
		t.Errorf("top question votes = %d, want 3", got[0].Votes)
	}
}

func TestTopQuestions_TieBreakByID(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, a1 := createTestQuestion(t, db, owner, "First tie?")
	q2, a2 := createTestQuestion(t, db, owner, "Second tie?")

	seedVotes(t, db, q1, a1[0], 2, "t1u")
	seedVotes(t, db, q2, a2[0], 2, "t2u")

	// Equal vote counts resolve in creation order.
	got, err := db.TopQuestions(ctx, models.TopOptions{Sort: models.TopSortMostVotes})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	assertOrder(t, got, []int64{q1, q2})
}

func TestTopQuestions_MostLiked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, _ := createTestQuestion(t, db, owner, "Liked a bit?")
	q2, _ := createTestQuestion(t, db, owner, "Liked a lot?")

	seedReactions(t, db, q1, models.ReactionLike, 1, "l1u")
	seedReactions(t, db, q2, models.ReactionLike, 3, "l2u")
	// Dislikes do not count toward the liked ranking.
	seedReactions(t, db, q1, models.ReactionDislike, 5, "d1u")

	got, err := db.TopQuestions(ctx, models.TopOptions{Sort: models.TopSortMostLiked})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	assertOrder(t, got, []int64{q2, q1})

	if got[0].Likes != 3 {
		t.Errorf("top question likes = %d, want 3", got[0].Likes)
	}
	if got[1].Dislikes != 5 {
		t.Errorf("second question dislikes = %d, want 5", got[1].Dislikes)
	}
}

func TestTopQuestions_Trending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, a1 := createTestQuestion(t, db, owner, "Votes only?")
	q2, _ := createTestQuestion(t, db, owner, "Likes only?")

	// q1 engagement: 3 votes = 3. q2 engagement: 2 likes * 2 = 4.
	seedVotes(t, db, q1, a1[0], 3, "e1u")
	seedReactions(t, db, q2, models.ReactionLike, 2, "e2u")

	got, err := db.TopQuestions(ctx, models.TopOptions{Sort: models.TopSortTrending})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	assertOrder(t, got, []int64{q2, q1})

	if got[0].Engagement != 4 {
		t.Errorf("q2 engagement = %d, want 4", got[0].Engagement)
	}
	if got[1].Engagement != 3 {
		t.Errorf("q1 engagement = %d, want 3", got[1].Engagement)
	}
}

func TestTopQuestions_Recent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, _ := createTestQuestion(t, db, owner, "Old?")
	q2, _ := createTestQuestion(t, db, owner, "New?")

	backdateQuestion(t, db, q1, time.Now().AddDate(0, 0, -3))

	got, err := db.TopQuestions(ctx, models.TopOptions{Sort: models.TopSortRecent})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	assertOrder(t, got, []int64{q2, q1})
}

func TestTopQuestions_TimeRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	today, _ := createTestQuestion(t, db, owner, "Today?")
	thisWeek, _ := createTestQuestion(t, db, owner, "This week?")
	thisMonth, _ := createTestQuestion(t, db, owner, "This month?")
	ancient, _ := createTestQuestion(t, db, owner, "Ancient?")

	backdateQuestion(t, db, thisWeek, time.Now().AddDate(0, 0, -3))
	backdateQuestion(t, db, thisMonth, time.Now().AddDate(0, 0, -20))
	backdateQuestion(t, db, ancient, time.Now().AddDate(0, -3, 0))

	tests := []struct {
		name      string
		timeRange models.TimeRange
		want      int
	}{
		{"all", models.TimeRangeAll, 4},
		{"month", models.TimeRangeMonth, 3},
		{"week", models.TimeRangeWeek, 2},
		{"today", models.TimeRangeToday, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.TopQuestions(ctx, models.TopOptions{
				Sort:      models.TopSortMostVotes,
				TimeRange: tt.timeRange,
			})
			if err != nil {
				t.Fatalf("TopQuestions failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d questions (%v), want %d", len(got), questionIDs(got), tt.want)
			}
		})
	}

	// The today window must include today's question specifically.
	got, err := db.TopQuestions(ctx, models.TopOptions{TimeRange: models.TimeRangeToday})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != today {
		t.Errorf("today window = %v, want [%d]", questionIDs(got), today)
	}
}

func TestTopQuestions_Category(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")

	tech, err := db.CreateQuestion(ctx, "Tech?", []string{"A", "B"}, owner, "tech")
	if err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}
	if _, err := db.CreateQuestion(ctx, "Food?", []string{"A", "B"}, owner, "food"); err != nil {
		t.Fatalf("CreateQuestion failed: %v", err)
	}

	got, err := db.TopQuestions(ctx, models.TopOptions{Category: "tech"})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != tech.ID {
		t.Errorf("tech filter = %v, want [%d]", questionIDs(got), tech.ID)
	}

	// "all" is a pass-through, not a literal category value.
	got, err = db.TopQuestions(ctx, models.TopOptions{Category: "all"})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("category all returned %d questions, want 2", len(got))
	}
}

func TestTopQuestions_MinVotes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	q1, a1 := createTestQuestion(t, db, owner, "Enough?")
	_, _ = createTestQuestion(t, db, owner, "Not enough?")

	seedVotes(t, db, q1, a1[0], 2, "mvu")

	got, err := db.TopQuestions(ctx, models.TopOptions{MinVotes: 2})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != q1 {
		t.Errorf("minVotes filter = %v, want [%d]", questionIDs(got), q1)
	}
}

func TestTopQuestions_Limit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	for i := 0; i < models.TopQuestionsLimit+5; i++ {
		createTestQuestion(t, db, owner, uniqueUsername("Question", i))
	}

	got, err := db.TopQuestions(ctx, models.TopOptions{})
	if err != nil {
		t.Fatalf("TopQuestions failed: %v", err)
	}
	if len(got) != models.TopQuestionsLimit {
		t.Errorf("got %d questions, want %d", len(got), models.TopQuestionsLimit)
	}
}

func TestTimeRangeCutoff(t *testing.T) {
	now := time.Date(2026, time.March, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		timeRange models.TimeRange
		want      time.Time
		bounded   bool
	}{
		{"all", models.TimeRangeAll, time.Time{}, false},
		{"unknown", models.TimeRange("fortnight"), time.Time{}, false},
		{"today", models.TimeRangeToday, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), true},
		{"week", models.TimeRangeWeek, time.Date(2026, time.March, 8, 14, 30, 0, 0, time.UTC), true},
		{"month", models.TimeRangeMonth, time.Date(2026, time.February, 15, 14, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := timeRangeCutoff(tt.timeRange, now)
			if ok != tt.bounded {
				t.Fatalf("bounded = %v, want %v", ok, tt.bounded)
			}
			if tt.bounded && !got.Equal(tt.want) {
				t.Errorf("cutoff = %v, want %v", got, tt.want)
			}
		})
	}
}
