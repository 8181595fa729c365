// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package database

import (
	"context"
	"time"

	"github.com/pollarium/pollarium/internal/models"
)

// TopQuestions returns the ranked question list, capped at
// models.TopQuestionsLimit rows and fully hydrated.
//
// Unknown sort values fall back to mostVotes; unknown time ranges fall
// back to all. Every ordering carries q.id ASC as secondary key so ties
// return in stable creation order.
func (db *DB) TopQuestions(ctx context.Context, opts models.TopOptions) ([]models.Question, error) {
	query := `SELECT * FROM (` + questionSelect
	args := make([]any, 0, 4)

	where := make([]string, 0, 2)
	if cutoff, ok := timeRangeCutoff(opts.TimeRange, time.Now()); ok {
		where = append(where, "q.created_at >= ?")
		args = append(args, cutoff)
	}
	if opts.Category != "" && opts.Category != "all" {
		where = append(where, "q.category = ?")
		args = append(args, opts.Category)
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += `) t`

	if opts.MinVotes > 0 {
		query += ` WHERE t.votes >= ?`
		args = append(args, opts.MinVotes)
	}

	switch opts.Sort {
	case models.TopSortMostLiked:
		query += ` ORDER BY t.likes DESC, t.id ASC`
	case models.TopSortTrending:
		query += ` ORDER BY (t.votes + t.likes * 2) DESC, t.id ASC`
	case models.TopSortRecent:
		query += ` ORDER BY t.created_at DESC, t.id ASC`
	default:
		query += ` ORDER BY t.votes DESC, t.id ASC`
	}

	query += ` LIMIT ?`
	args = append(args, models.TopQuestionsLimit)

	return db.queryQuestions(ctx, query, args...)
}

// timeRangeCutoff maps a time range to its inclusive lower bound.
// today is the start of the current calendar day, week is now minus
// seven days, month is now minus one calendar month.
func timeRangeCutoff(tr models.TimeRange, now time.Time) (time.Time, bool) {
	switch tr {
	case models.TimeRangeToday:
		year, month, day := now.Date()
		return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
	case models.TimeRangeWeek:
		return now.AddDate(0, 0, -7), true
	case models.TimeRangeMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}
