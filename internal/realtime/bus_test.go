package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishFeedbackDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch := bus.SubscribeFeedback(1)

	bus.PublishFeedback(RealTimeFeedback{CurrentMeasure: 3, LocalAccuracyPct: 90})

	select {
	case f := <-ch:
		assert.Equal(t, 3, f.CurrentMeasure)
		assert.Equal(t, 90.0, f.LocalAccuracyPct)
	case <-time.After(time.Second):
		t.Fatal("expected feedback, got none")
	}
}

func TestBusPublishFeedbackDropsOnFullChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.SubscribeFeedback(1)

	bus.PublishFeedback(RealTimeFeedback{CurrentMeasure: 1})
	bus.PublishFeedback(RealTimeFeedback{CurrentMeasure: 2}) // dropped, buffer full

	f := <-ch
	assert.Equal(t, 1, f.CurrentMeasure)
	select {
	case <-ch:
		t.Fatal("expected channel to be empty after drop")
	default:
	}
}

func TestBusPublishErrorDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch := bus.SubscribeErrors(1)
	bus.PublishError(ErrorDetectedEvent{Measure: 5, Message: "note skipped"})

	select {
	case e := <-ch:
		assert.Equal(t, 5, e.Measure)
	case <-time.After(time.Second):
		t.Fatal("expected error event, got none")
	}
}

func TestBusCloseClosesAllChannels(t *testing.T) {
	bus := NewBus()
	feedbackCh := bus.SubscribeFeedback(1)
	errCh := bus.SubscribeErrors(1)

	bus.Close()

	_, ok := <-feedbackCh
	assert.False(t, ok)
	_, ok = <-errCh
	assert.False(t, ok)
}

func TestBusPublishWithNoSubscribersDoesNotPanic(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.PublishFeedback(RealTimeFeedback{})
		bus.PublishError(ErrorDetectedEvent{})
	})
}
