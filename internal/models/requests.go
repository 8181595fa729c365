// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package models

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// CreateQuestionRequest is the payload for POST /api/questions.
// A question needs at least two non-empty answer options.
type CreateQuestionRequest struct {
	Text     string   `json:"text" validate:"required,min=1,max=500"`
	Answers  []string `json:"answers" validate:"required,min=2,dive,required,max=200"`
	Category string   `json:"category" validate:"omitempty,max=50"`
}

// UpdateQuestionRequest is the payload for PUT /api/questions/{id}.
// Answers replace the existing set wholesale.
type UpdateQuestionRequest struct {
	Text    string   `json:"text" validate:"required,min=1,max=500"`
	Answers []string `json:"answers" validate:"required,min=2,dive,required,max=200"`
}

// VoteRequest is the payload for POST /api/questions/{id}/vote.
type VoteRequest struct {
	AnswerID int64 `json:"answerId" validate:"required,gt=0"`
}

// ReactRequest is the payload for POST /api/questions/{id}/react.
type ReactRequest struct {
	Reaction string `json:"reaction" validate:"required,oneof=like dislike"`
}

// ToggleAdminRequest is the payload for POST /api/admin/users/{id}/toggle-admin.
type ToggleAdminRequest struct {
	IsAdmin bool `json:"isAdmin"`
}

// SuccessResponse is the generic mutation acknowledgment.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the wire shape of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
