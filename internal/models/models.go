// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package models defines the domain types shared between the store and the
// HTTP API.
package models

import "time"

// Reaction values accepted for question reactions. Latest reaction per
// (user, question) wins; there is no reaction history.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)

// User represents a registered account. PasswordHash never leaves the
// store layer; the API serializes users through PublicUser.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns the externally visible projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}

// PublicUser is the user shape embedded in auth responses.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Answer is one selectable option of a question, hydrated with its vote
// count.
type Answer struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
}

// Question is the hydrated question projection returned by all listing
// endpoints.
//
// Engagement is the trending score: votes + 2*likes.
type Question struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Author     string    `json:"author"`
	UserID     int64     `json:"user_id"`
	Votes      int64     `json:"votes"`
	Likes      int64     `json:"likes"`
	Dislikes   int64     `json:"dislikes"`
	Engagement int64     `json:"engagement"`
	Answers    []Answer  `json:"answers"`
}

// ReactionCounts holds zero-filled like/dislike totals for a question.
type ReactionCounts struct {
	Like    int64 `json:"like"`
	Dislike int64 `json:"dislike"`
}

// AdminUser is the moderation projection of a user, including how many
// questions they have posted.
type AdminUser struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	IsAdmin       bool      `json:"isAdmin"`
	CreatedAt     time.Time `json:"created_at"`
	QuestionCount int64     `json:"question_count"`
}

// TopSort enumerates the supported top-questions orderings.
type TopSort string

// Supported sort orders. Unknown values fall back to TopSortMostVotes.
const (
	TopSortMostVotes TopSort = "mostVotes"
	TopSortMostLiked TopSort = "mostLiked"
	TopSortTrending  TopSort = "trending"
	TopSortRecent    TopSort = "recent"
)

// TimeRange enumerates the supported top-questions time windows.
type TimeRange string

// Supported time windows. Unknown values fall back to TimeRangeAll.
const (
	TimeRangeAll   TimeRange = "all"
	TimeRangeToday TimeRange = "today"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
)

// TopOptions are the filters for the top-questions ranking query.
type TopOptions struct {
	Sort      TopSort
	TimeRange TimeRange
	Category  string
	MinVotes  int64
}

// TopQuestionsLimit caps the number of rows any ranking query returns.
const TopQuestionsLimit = 20
