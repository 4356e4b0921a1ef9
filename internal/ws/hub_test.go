package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

// recvEvent reads the next event off a client's send queue
func recvEvent(t *testing.T, c *Client) (Event, bool) {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			return Event{}, false
		}
		var e Event
		require.NoError(t, json.Unmarshal(data, &e))
		return e, true
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestHub_HandshakeFirst(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice")
	hub.Register(client)
	hub.SendToUser("alice", &Event{Type: EventNotification, Payload: "n1"})

	first, ok := recvEvent(t, client)
	require.True(t, ok)
	assert.Equal(t, EventConnected, first.Type)

	second, ok := recvEvent(t, client)
	require.True(t, ok)
	assert.Equal(t, EventNotification, second.Type)
}

func TestHub_DeliversInEmissionOrder(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice")
	hub.Register(client)

	payloads := []string{"one", "two", "three"}
	for _, p := range payloads {
		hub.SendToUser("alice", &Event{Type: EventNotification, Payload: p})
	}

	handshake, _ := recvEvent(t, client)
	assert.Equal(t, EventConnected, handshake.Type)
	for _, want := range payloads {
		e, ok := recvEvent(t, client)
		require.True(t, ok)
		assert.Equal(t, want, e.Payload)
	}
}

func TestHub_EmitWithoutClientIsNoOp(t *testing.T) {
	hub := startHub(t)

	// No channel tracked for bob: the push layer drops the event
	hub.SendToUser("bob", &Event{Type: EventNotification, Payload: "missed"})

	client := NewClient(hub, nil, "bob")
	hub.Register(client)

	// Only the handshake arrives; the earlier event is not redelivered
	first, ok := recvEvent(t, client)
	require.True(t, ok)
	assert.Equal(t, EventConnected, first.Type)

	select {
	case data := <-client.send:
		t.Fatalf("unexpected redelivery: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_NewConnectionReplacesOld(t *testing.T) {
	hub := startHub(t)

	old := NewClient(hub, nil, "alice")
	hub.Register(old)
	e, ok := recvEvent(t, old)
	require.True(t, ok)
	assert.Equal(t, EventConnected, e.Type)

	replacement := NewClient(hub, nil, "alice")
	hub.Register(replacement)

	// Old channel is closed; events go to the replacement only
	_, ok = recvEvent(t, old)
	assert.False(t, ok)

	hub.SendToUser("alice", &Event{Type: EventNotification, Payload: "fresh"})

	handshake, ok := recvEvent(t, replacement)
	require.True(t, ok)
	assert.Equal(t, EventConnected, handshake.Type)
	delivered, ok := recvEvent(t, replacement)
	require.True(t, ok)
	assert.Equal(t, "fresh", delivered.Payload)
}

func TestHub_DeliversAtMostOncePerEmission(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice")
	hub.Register(client)
	handshake, _ := recvEvent(t, client)
	assert.Equal(t, EventConnected, handshake.Type)

	hub.SendToUser("alice", &Event{Type: EventNotification, Payload: "only"})

	e, ok := recvEvent(t, client)
	require.True(t, ok)
	assert.Equal(t, "only", e.Payload)

	select {
	case data := <-client.send:
		t.Fatalf("one emission delivered twice: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_FanoutDropsOwnPublishes(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice")
	hub.Register(client)
	handshake, _ := recvEvent(t, client)
	assert.Equal(t, EventConnected, handshake.Type)

	// A publish from this instance echoes back over pub/sub; the direct
	// broadcast already delivered it, so the echo must not be delivered.
	echo, err := json.Marshal(&redisMessage{
		Origin: hub.instanceID,
		UserID: "alice",
		Event:  &Event{Type: EventNotification, Payload: "dup"},
	})
	require.NoError(t, err)
	hub.dispatchFanout(echo)

	select {
	case data := <-client.send:
		t.Fatalf("own publish delivered a second time: %s", data)
	case <-time.After(100 * time.Millisecond):
	}

	// A publish from another instance is delivered normally
	foreign, err := json.Marshal(&redisMessage{
		Origin: "some-other-instance",
		UserID: "alice",
		Event:  &Event{Type: EventNotification, Payload: "remote"},
	})
	require.NoError(t, err)
	hub.dispatchFanout(foreign)

	e, ok := recvEvent(t, client)
	require.True(t, ok)
	assert.Equal(t, "remote", e.Payload)
}

func TestHub_UnregisterReleasesUser(t *testing.T) {
	hub := startHub(t)

	client := NewClient(hub, nil, "alice")
	hub.Register(client)
	recvEvent(t, client)

	hub.unregister <- client

	deadline := time.After(time.Second)
	for hub.Connected("alice") {
		select {
		case <-deadline:
			t.Fatal("client still tracked after unregister")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
