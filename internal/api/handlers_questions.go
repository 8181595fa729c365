// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"net/http"

	"github.com/pollarium/pollarium/internal/auth"
	"github.com/pollarium/pollarium/internal/logging"
	"github.com/pollarium/pollarium/internal/models"
)

// This file contains the question endpoints: listing, creation, edits,
// deletion, and the ranked top-questions view.
//
// All mutating handlers follow a consistent pattern:
//  1. Claims extraction (routes are behind the auth middleware)
//  2. Body decode and validation
//  3. Database operation with the request context
//  4. WebSocket broadcast so connected dashboards refresh
//  5. JSON response

// ListQuestions returns all questions, newest first, with hydrated
// vote and reaction counts.
//
// Method: GET
// Path: /api/questions
func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.db.ListQuestions(r.Context())
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// ListUserQuestions returns the questions owned by the authenticated
// user.
//
// Method: GET
// Path: /api/questions/user
func (h *Handler) ListUserQuestions(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	questions, err := h.db.ListQuestionsByUser(r.Context(), claims.UserID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// CreateQuestion creates a question with its answer options.
//
// Method: POST
// Path: /api/questions
//
// Response:
//   - 201: Question created
//   - 400: Validation failure, including fewer than two answers
//   - 401: Missing or invalid token
func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req models.CreateQuestionRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	question, err := h.db.CreateQuestion(r.Context(), req.Text, req.Answers, claims.UserID, req.Category)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Info().Int64("question_id", question.ID).Int64("user_id", claims.UserID).Msg("Question created")

	if h.wsHub != nil {
		h.wsHub.BroadcastQuestionCreated(question)
	}

	respondJSON(w, http.StatusCreated, question)
}

// UpdateQuestion replaces a question's text and answer set. Existing
// votes point at the replaced answers and are cleared with them.
//
// Method: PUT
// Path: /api/questions/{id}
//
// Response:
//   - 200: Updated question
//   - 400: Validation failure
//   - 403: Caller does not own the question
//   - 404: No such question
func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req models.UpdateQuestionRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	question, err := h.db.UpdateQuestion(r.Context(), id, req.Text, req.Answers, claims.UserID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}

	if h.wsHub != nil {
		h.wsHub.BroadcastQuestionUpdated(question)
	}

	respondJSON(w, http.StatusOK, question)
}

// DeleteQuestion removes a question along with its answers, votes, and
// reactions. Owners may delete their own questions; admins may delete
// any.
//
// Method: DELETE
// Path: /api/questions/{id}
func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if err := h.db.DeleteQuestion(r.Context(), id, claims.UserID, claims.Admin); err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Info().Int64("question_id", id).Int64("user_id", claims.UserID).Msg("Question deleted")

	if h.wsHub != nil {
		h.wsHub.BroadcastQuestionDeleted(id)
	}

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}

// TopQuestions returns up to 20 questions ranked by the requested sort.
//
// Method: GET
// Path: /api/questions/top
//
// Query parameters:
//   - sort: mostVotes (default), mostLiked, trending, recent
//   - timeRange: all (default), today, week, month
//   - category: exact category filter
//   - minVotes: minimum vote count
//
// Unrecognized sort and timeRange values fall back to their defaults
// rather than erroring, matching the forgiving behavior of the UI.
func (h *Handler) TopQuestions(w http.ResponseWriter, r *http.Request) {
	opts := models.TopOptions{
		Sort:      parseTopSort(r.URL.Query().Get("sort")),
		TimeRange: parseTimeRange(r.URL.Query().Get("timeRange")),
		Category:  r.URL.Query().Get("category"),
		MinVotes:  int64(getIntParam(r, "minVotes", 0)),
	}

	questions, err := h.db.TopQuestions(r.Context(), opts)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

func parseTopSort(raw string) models.TopSort {
	switch models.TopSort(raw) {
	case models.TopSortMostLiked, models.TopSortTrending, models.TopSortRecent:
		return models.TopSort(raw)
	default:
		return models.TopSortMostVotes
	}
}

func parseTimeRange(raw string) models.TimeRange {
	switch models.TimeRange(raw) {
	case models.TimeRangeToday, models.TimeRangeWeek, models.TimeRangeMonth:
		return models.TimeRange(raw)
	default:
		return models.TimeRangeAll
	}
}
