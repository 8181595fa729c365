// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

// Package websocket pushes live question updates to connected browsers.
//
// The Hub owns the client set and fans out messages. Handlers call the
// Broadcast* methods after mutating a question; clients receive typed
// JSON frames and refresh their local state.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/pollarium/pollarium/internal/logging"
	"github.com/pollarium/pollarium/internal/metrics"
	"github.com/pollarium/pollarium/internal/models"
)

// Message types pushed to clients.
const (
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeQuestionCreated = "question_created"
	MessageTypeQuestionUpdated = "question_updated"
	MessageTypeQuestionDeleted = "question_deleted"
)

// Message represents a WebSocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// QuestionDeletedData is the payload of question_deleted frames.
type QuestionDeletedData struct {
	ID int64 `json:"id"`
}

// Hub maintains the set of active clients and broadcasts messages to
// them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext starts the hub loop with context support for graceful
// shutdown. Designed for use under suture supervision.
//
// Lifecycle events are drained before broadcasts so the client set is
// consistent when a message fans out. Go's select picks randomly among
// ready channels, so each tier is checked non-blocking first.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		metrics.WSConnections.Dec()
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// shutdown closes all clients and logs the reason. Context cancellation
// is expected during graceful shutdown, so it is not logged as an error.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

// broadcastToClients sends a message to all connected clients in client
// ID order. Clients with a full send buffer are dropped rather than
// blocking the hub.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
	}
}

// enqueue submits a message for broadcast without blocking the caller.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastQuestionCreated notifies all clients of a new question.
func (h *Hub) BroadcastQuestionCreated(question *models.Question) {
	h.enqueue(Message{Type: MessageTypeQuestionCreated, Data: question})
}

// BroadcastQuestionUpdated notifies all clients that a question changed.
// Sent after edits, votes, and reactions so dashboards stay current.
func (h *Hub) BroadcastQuestionUpdated(question *models.Question) {
	h.enqueue(Message{Type: MessageTypeQuestionUpdated, Data: question})
}

// BroadcastQuestionDeleted notifies all clients that a question was
// removed.
func (h *Hub) BroadcastQuestionDeleted(id int64) {
	h.enqueue(Message{Type: MessageTypeQuestionDeleted, Data: QuestionDeletedData{ID: id}})
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve adapts RunWithContext to the suture.Service interface.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String identifies the hub in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}
