package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType kind of booking notification
type EventType string

const (
	EventPaymentPending EventType = "booking.payment_pending"
	EventStatusChanged  EventType = "booking.status_changed"
)

// BookingEvent is published to the notification collaborator (email, WhatsApp, push, dashboards)
type BookingEvent struct {
	ID               string        `json:"id"`
	Type             EventType     `json:"type"`
	BookingID        int64         `json:"bookingId"`
	BarberID         int64         `json:"barberId"`
	BarberName       string        `json:"barberName"`
	ServiceID        int64         `json:"serviceId"`
	ServiceName      string        `json:"serviceName"`
	CustomerID       int64         `json:"customerId"`
	CustomerName     string        `json:"customerName"`
	BookingDate      string        `json:"bookingDate"`
	StartTime        string        `json:"startTime"`
	Status           BookingStatus `json:"status"`
	PreviousStatus   BookingStatus `json:"previousStatus,omitempty"`
	PaymentExpiresAt *time.Time    `json:"paymentExpiresAt,omitempty"`
	OccurredAt       time.Time     `json:"occurredAt"`
}

// NewPaymentPendingEvent builds the event emitted when a booking is created in AwaitingPayment
func NewPaymentPendingEvent(b *Booking, now time.Time) BookingEvent {
	return newBookingEvent(EventPaymentPending, b, "", now)
}

// NewStatusChangedEvent builds the event emitted on every status transition
func NewStatusChangedEvent(b *Booking, previous BookingStatus, now time.Time) BookingEvent {
	return newBookingEvent(EventStatusChanged, b, previous, now)
}

func newBookingEvent(t EventType, b *Booking, previous BookingStatus, now time.Time) BookingEvent {
	return BookingEvent{
		ID:               uuid.NewString(),
		Type:             t,
		BookingID:        b.ID,
		BarberID:         b.BarberID,
		BarberName:       b.BarberName,
		ServiceID:        b.ServiceID,
		ServiceName:      b.ServiceName,
		CustomerID:       b.CustomerID,
		CustomerName:     b.CustomerName,
		BookingDate:      b.BookingDate.Format(DateFormat),
		StartTime:        b.StartTime.String(),
		Status:           b.Status,
		PreviousStatus:   previous,
		PaymentExpiresAt: b.PaymentExpiresAt,
		OccurredAt:       now,
	}
}
