package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversOnlyToAddressee(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	alice := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, 4)}
	bob := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, 4)}
	hub.Register(alice)
	hub.Register(bob)
	require.Eventually(t, func() bool { return hub.Connected(alice.userID) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.BroadcastToUser(alice.userID, "contract.escrowed", map[string]string{"state": "active"}))

	select {
	case raw := <-alice.send:
		var env struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, "contract.escrowed", env.Type)
		assert.Equal(t, "active", env.Data["state"])
	case <-time.After(time.Second):
		t.Fatal("message was not delivered")
	}

	select {
	case <-bob.send:
		t.Fatal("bob must not receive alice's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterAfterStopDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := &Client{hub: hub, userID: uuid.New(), send: make(chan []byte, 1)}
	done := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}
