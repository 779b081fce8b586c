package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHubSendReachesEveryDevice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	phone := &Client{Hub: hub, UserID: "u1", Send: make(chan []byte, 1)}
	laptop := &Client{Hub: hub, UserID: "u1", Send: make(chan []byte, 1)}
	other := &Client{Hub: hub, UserID: "u2", Send: make(chan []byte, 1)}
	hub.register <- phone
	hub.register <- laptop
	hub.register <- other

	require.Eventually(t, func() bool { return hub.Connected("u1") && hub.Connected("u2") }, time.Second, 5*time.Millisecond)

	hub.Send("u1", Notification{Id: "n1", UserId: "u1", Type: "REMINDER", Title: "Reminder", Message: "Call mom"})

	for _, c := range []*Client{phone, laptop} {
		select {
		case raw := <-c.Send:
			var frame struct {
				Type string       `json:"type"`
				Data Notification `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &frame))
			assert.Equal(t, "notification", frame.Type)
			assert.Equal(t, "Call mom", frame.Data.Message)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
	assert.Empty(t, other.Send)

	cancel()
	<-done
}

func TestHubUnregisterClosesSend(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	c := &Client{Hub: hub, UserID: "u1", Send: make(chan []byte, 1)}
	hub.register <- c
	hub.unregister <- c

	_, ok := <-c.Send
	assert.False(t, ok)
	assert.False(t, hub.Connected("u1"))

	cancel()
	<-done
}

func TestClusterEchoIsIgnored(t *testing.T) {
	sender := NewHub(nil, nil)
	peer := NewHub(nil, nil)

	raw, err := sender.encodeCluster("u1", []byte(`{"type":"notification"}`))
	require.NoError(t, err)

	_, ok := sender.decodeCluster(raw)
	assert.False(t, ok, "publisher already delivered locally")

	msg, ok := peer.decodeCluster(raw)
	require.True(t, ok)
	assert.Equal(t, "u1", msg.TargetUserID)
	assert.JSONEq(t, `{"type":"notification"}`, string(msg.Message))

	_, ok = peer.decodeCluster([]byte("not json"))
	assert.False(t, ok)
}

func TestFullBufferAfterShutdownDoesNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	// unbuffered and never read, so every send takes the buffer full path
	stuck := &Client{Hub: hub, UserID: "u1", Send: make(chan []byte)}
	hub.register <- stuck
	require.Eventually(t, func() bool { return hub.Connected("u1") }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	hub.Send("u1", Notification{Id: "n1", UserId: "u1", Message: "late"})
}
