package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
)

func sampleEvent() domain.BookingEvent {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	return domain.NewStatusChangedEvent(&domain.Booking{
		ID:          42,
		BarberID:    3,
		BookingDate: now,
		StartTime:   "10:00",
		Status:      domain.StatusConfirmed,
	}, domain.StatusAwaitingPayment, now)
}

func TestBroker_PublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch, unsubscribe := b.Subscribe()

	event := sampleEvent()
	require.NoError(t, b.Publish(context.Background(), event))

	select {
	case got := <-ch:
		assert.Equal(t, event.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	require.NoError(t, b.Publish(context.Background(), event))
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	_, unsubscribe := b.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, b.Publish(context.Background(), sampleEvent()))
	}
	assert.Equal(t, 5, b.Dropped())
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	ch, _ := b.Subscribe()

	require.NoError(t, b.Close())
	_, ok := <-ch
	assert.False(t, ok)

	assert.ErrorIs(t, b.Publish(context.Background(), sampleEvent()), ErrClosed)
}

func TestToKafkaMessage(t *testing.T) {
	event := sampleEvent()

	msg, err := toKafkaMessage(event)
	require.NoError(t, err)

	assert.Equal(t, "42", string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, HeaderEventType, msg.Headers[1].Key)
	assert.Equal(t, string(domain.EventStatusChanged), string(msg.Headers[1].Value))

	var decoded domain.BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.BookingID, decoded.BookingID)
	assert.Equal(t, domain.StatusAwaitingPayment, decoded.PreviousStatus)
}

func TestToPublishing(t *testing.T) {
	event := sampleEvent()

	msg, err := toPublishing(event)
	require.NoError(t, err)

	assert.Equal(t, contentTypeJSON, msg.ContentType)
	assert.Equal(t, event.ID, msg.MessageId)
	assert.Equal(t, string(domain.EventStatusChanged), msg.Type)
	assert.Equal(t, event.ID, msg.Headers[HeaderEventID])
}
