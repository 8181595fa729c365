// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pollarium/pollarium/internal/models"
)

// newTestClient builds a hub client without a network connection. Only
// the send channel matters for hub-level tests.
func newTestClient(buffer int) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan Message, buffer),
	}
}

// runHub starts the hub loop and returns a stop function that blocks
// until the loop exits.
func runHub(t *testing.T, h *Hub) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		done <- h.RunWithContext(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			t.Error("hub did not stop")
		}
	})
	return cancel, done
}

// waitForClients polls until the hub reports the expected client count.
func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h.GetClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", h.GetClientCount(), want)
}

func TestHubRegisterUnregister(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	c1 := newTestClient(4)
	c2 := newTestClient(4)

	h.Register <- c1
	h.Register <- c2
	waitForClients(t, h, 2)

	h.Unregister <- c1
	waitForClients(t, h, 1)

	// Unregistering closes the client's send channel.
	select {
	case _, ok := <-c1.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Error("send channel was not closed")
	}
}

func TestHubBroadcast(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	c1 := newTestClient(4)
	c2 := newTestClient(4)
	h.Register <- c1
	h.Register <- c2
	waitForClients(t, h, 2)

	question := &models.Question{ID: 7, Text: "Live?"}
	h.BroadcastQuestionUpdated(question)

	for i, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeQuestionUpdated {
				t.Errorf("client %d: type = %q, want %q", i, msg.Type, MessageTypeQuestionUpdated)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %d did not receive the broadcast", i)
		}
	}
}

func TestHubBroadcastDropsSlowClients(t *testing.T) {
	h := NewHub()
	runHub(t, h)

	// A zero-buffer client with no reader is immediately full.
	slow := newTestClient(0)
	fast := newTestClient(4)
	h.Register <- slow
	h.Register <- fast
	waitForClients(t, h, 2)

	h.BroadcastQuestionDeleted(42)

	// The fast client gets the frame, the slow one is evicted.
	select {
	case msg := <-fast.send:
		if msg.Type != MessageTypeQuestionDeleted {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeQuestionDeleted)
		}
		data, ok := msg.Data.(QuestionDeletedData)
		if !ok || data.ID != 42 {
			t.Errorf("payload = %+v, want QuestionDeletedData{42}", msg.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fast client did not receive the broadcast")
	}
	waitForClients(t, h, 1)
}

func TestHubShutdownClosesClients(t *testing.T) {
	h := NewHub()
	cancel, done := runHub(t, h)

	c := newTestClient(4)
	h.Register <- c
	waitForClients(t, h, 1)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	if h.GetClientCount() != 0 {
		t.Errorf("client count = %d, want 0 after shutdown", h.GetClientCount())
	}
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	default:
		t.Error("send channel was not closed")
	}
}

func TestHubString(t *testing.T) {
	t.Parallel()

	if got := NewHub().String(); got != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", got)
	}
}

func TestClientID(t *testing.T) {
	t.Parallel()

	c1 := NewClient(nil, nil)
	c2 := NewClient(nil, nil)
	if c1.ID() >= c2.ID() {
		t.Errorf("IDs must be monotonically increasing: %d then %d", c1.ID(), c2.ID())
	}
}
