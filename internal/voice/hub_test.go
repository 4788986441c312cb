package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterAndReplaceClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := NewClient("driver-1", nil, hub)
	hub.Register <- first

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	// A reconnect for the same driver replaces the old channel
	second := NewClient("driver-1", nil, hub)
	hub.Register <- second

	require.Eventually(t, func() bool {
		_, ok := <-first.Send
		return !ok
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.ClientCount())

	got, ok := hub.GetClient("driver-1")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient("driver-1", nil, hub)
	hub.Register <- client
	hub.Unregister <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHubUnregisterIgnoresReplacedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := NewClient("driver-1", nil, hub)
	second := NewClient("driver-1", nil, hub)
	hub.Register <- first
	hub.Register <- second

	// The stale client's unregister must not evict its replacement
	hub.Unregister <- first

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestSendMessageOverflowDropsClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient("driver-1", nil, hub)
	hub.Register <- client

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	for i := 0; i < cap(client.Send); i++ {
		client.Send <- &Message{Type: TypeReply}
	}

	// The overflowing send evicts the client; the hub owns the single close
	client.SendMessage(&Message{Type: TypeReply, Text: "overflow"})

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 10*time.Millisecond)

	// Late sends after the close are discarded, not a panic
	client.SendMessage(&Message{Type: TypeReply, Text: "late"})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubMessageRouting(t *testing.T) {
	hub := NewHub()

	received := make(chan *Message, 1)
	hub.RegisterHandler(TypeUtterance, func(_ *Client, msg *Message) {
		received <- msg
	})

	client := NewClient("driver-1", nil, hub)
	hub.HandleMessage(client, &Message{Type: TypeUtterance, Text: "hello"})

	select {
	case msg := <-received:
		assert.Equal(t, "hello", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	// Unknown types are dropped without panicking
	hub.HandleMessage(client, &Message{Type: "noise"})
}
