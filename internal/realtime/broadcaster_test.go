package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcasterFansOutToRegisteredClients(t *testing.T) {
	feedbackCh := make(chan RealTimeFeedback, 1)
	b := NewBroadcaster(feedbackCh)
	go b.Run()

	client := &wsClient{send: make(chan []byte, 1)}
	b.register <- client
	time.Sleep(10 * time.Millisecond) // let Run's select loop process the registration

	feedbackCh <- RealTimeFeedback{CurrentMeasure: 7, LocalAccuracyPct: 85}

	select {
	case msg := <-client.send:
		var got RealTimeFeedback
		require := assert.New(t)
		require.NoError(json.Unmarshal(msg, &got))
		require.Equal(7, got.CurrentMeasure)
	case <-time.After(time.Second):
		t.Fatal("expected fanned-out feedback message")
	}
}

func TestBroadcasterUnregisterClosesSendChannel(t *testing.T) {
	feedbackCh := make(chan RealTimeFeedback)
	b := NewBroadcaster(feedbackCh)
	go b.Run()

	client := &wsClient{send: make(chan []byte, 1)}
	b.register <- client
	time.Sleep(10 * time.Millisecond)

	b.unregister <- client
	time.Sleep(10 * time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok)
}

func TestBroadcasterStopsWhenFeedbackChannelCloses(t *testing.T) {
	feedbackCh := make(chan RealTimeFeedback)
	b := NewBroadcaster(feedbackCh)
	done := make(chan struct{})
	go func() {
		b.Run()
		close(done)
	}()

	close(feedbackCh)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return once feedback channel closes")
	}
}

func TestBroadcasterDropsOnSlowClient(t *testing.T) {
	feedbackCh := make(chan RealTimeFeedback, 1)
	b := NewBroadcaster(feedbackCh)
	go b.Run()

	client := &wsClient{send: make(chan []byte)} // unbuffered, never read: every send drops
	b.register <- client
	time.Sleep(10 * time.Millisecond)

	assert.NotPanics(t, func() {
		feedbackCh <- RealTimeFeedback{CurrentMeasure: 1}
		time.Sleep(10 * time.Millisecond)
	})
}
