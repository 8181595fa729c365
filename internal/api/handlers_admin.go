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

// Admin endpoints. All routes in this file sit behind RequireAdmin, so
// handlers can assume an authenticated admin caller.

// AdminListUsers returns all accounts with their question counts.
//
// Method: GET
// Path: /api/admin/users
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// AdminListQuestions returns every question for moderation, using the
// same hydrated shape as the public listing.
//
// Method: GET
// Path: /api/admin/questions
func (h *Handler) AdminListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.db.ListQuestions(r.Context())
	if err != nil {
		respondDatabaseError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

// AdminToggleAdmin grants or revokes the admin flag on an account.
// Admins cannot demote themselves; that would risk locking the last
// admin out.
//
// Method: POST
// Path: /api/admin/users/{id}/toggle-admin
func (h *Handler) AdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var req models.ToggleAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if claims != nil && claims.UserID == id && !req.IsAdmin {
		respondError(w, http.StatusBadRequest, "cannot revoke your own admin access", nil)
		return
	}

	if err := h.db.SetAdmin(r.Context(), id, req.IsAdmin); err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Info().Int64("user_id", id).Bool("is_admin", req.IsAdmin).Msg("Admin flag changed")

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}

// AdminDeleteUser removes an account along with its questions, votes,
// and reactions. Admins cannot delete their own account through this
// endpoint.
//
// Method: DELETE
// Path: /api/admin/users/{id}
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	if claims != nil && claims.UserID == id {
		respondError(w, http.StatusBadRequest, "cannot delete your own account", nil)
		return
	}

	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Info().Int64("user_id", id).Msg("User deleted by admin")

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}

// AdminDeleteQuestion removes any question regardless of ownership.
//
// Method: DELETE
// Path: /api/admin/questions/{id}
func (h *Handler) AdminDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var userID int64
	if claims != nil {
		userID = claims.UserID
	}

	if err := h.db.DeleteQuestion(r.Context(), id, userID, true); err != nil {
		respondDatabaseError(w, err)
		return
	}

	logging.Info().Int64("question_id", id).Msg("Question deleted by admin")

	if h.wsHub != nil {
		h.wsHub.BroadcastQuestionDeleted(id)
	}

	respondJSON(w, http.StatusOK, &models.SuccessResponse{Success: true})
}
