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

// Vote records a vote for one answer of a question. Each user may vote
// at most once per question; the database enforces this with a UNIQUE
// constraint, so concurrent duplicate votes lose the race cleanly.
//
// Method: POST
// Path: /api/questions/{id}/vote
//
// Response:
//   - 200: Vote recorded
//   - 400: Duplicate vote or malformed body
//   - 401: Missing or invalid token
//   - 404: Question or answer not found, or answer belongs to another question
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	questionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req models.VoteRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	if err := h.db.CastVote(r.Context(), questionID, req.AnswerID, claims.UserID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Debug().
		Int64("question_id", questionID).
		Int64("answer_id", req.AnswerID).
		Int64("user_id", claims.UserID).
		Msg("Vote cast")

	h.broadcastQuestion(r, questionID)

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}

// React records a like or dislike for a question. Reacting again
// replaces the previous reaction, so the latest choice wins.
//
// Method: POST
// Path: /api/questions/{id}/react
func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	questionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req models.ReactRequest
	if msg, ok := decodeAndValidate(r, &req); !ok {
		respondError(w, http.StatusBadRequest, msg, nil)
		return
	}

	if err := h.db.React(r.Context(), questionID, claims.UserID, req.Reaction); err != nil {
		respondDatabaseError(w, err)
		return
	}

	h.broadcastQuestion(r, questionID)

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}

// Reactions returns the like and dislike totals for a question. Counts
// are zero-filled so a question with no reactions still reports both
// keys.
//
// Method: GET
// Path: /api/questions/{id}/reactions
func (h *Handler) Reactions(w http.ResponseWriter, r *http.Request) {
	questionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if _, err := h.db.QuestionByID(r.Context(), questionID); err != nil {
		respondDatabaseError(w, err)
		return
	}

	counts, err := h.db.ReactionCounts(r.Context(), questionID)
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, counts)
}

// broadcastQuestion pushes the question's fresh state to WebSocket
// clients. Failures only cost the live update, never the request.
func (h *Handler) broadcastQuestion(r *http.Request, questionID int64) {
	if h.wsHub == nil {
		return
	}

	question, err := h.db.QuestionByID(r.Context(), questionID)
	if err != nil {
		logging.Debug().Err(err).Int64("question_id", questionID).Msg("Skipping broadcast, question reload failed")
		return
	}
	h.wsHub.BroadcastQuestionUpdated(question)
}
