package domain

import (
	"time"

	"github.com/barberly/booking-engine/pkg/types"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusCancelled       BookingStatus = "cancelled"
)

// transitions lists allowed moves; Confirmed and Cancelled are terminal
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:         {StatusConfirmed, StatusCancelled},
	StatusAwaitingPayment: {StatusConfirmed, StatusCancelled},
}

// IsValid returns true for a known status
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingPayment, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that never change again
func (s BookingStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> to
func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// PaymentMethod how the customer pays for the booking
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentPix          PaymentMethod = "pix"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid returns true for a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix, PaymentBankTransfer:
		return true
	}
	return false
}

// CancellationReason why a booking ended up cancelled
type CancellationReason string

const (
	CancelledByCustomer     CancellationReason = "customer"
	CancelledByStaff        CancellationReason = "staff"
	CancelledPaymentTimeout CancellationReason = "payment_expired"
)

// Booking represents a reserved time on a barber's calendar
type Booking struct {
	ID              int64
	BarberID        int64
	ServiceID       int64
	ServiceOptionID *int64
	CustomerID      int64
	BookingDate     time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          BookingStatus
	PaymentMethod   PaymentMethod

	// PaymentExpiresAt is set only for bookings created in AwaitingPayment
	PaymentExpiresAt *time.Time

	// Denormalized data for notifications and history
	CustomerName  string
	CustomerPhone *string
	BarberName    string
	ServiceName   string
	Price         float64
	Notes         *string

	CancellationReason *CancellationReason
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies time on the calendar
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// EndTime returns the end of the booking interval (exclusive)
func (b *Booking) EndTime() (types.TimeString, error) {
	return b.StartTime.AddMinutes(b.DurationMinutes)
}

// IsPaymentOverdue returns true if the booking is awaiting payment past its deadline
func (b *Booking) IsPaymentOverdue(now time.Time) bool {
	return b.Status == StatusAwaitingPayment &&
		b.PaymentExpiresAt != nil &&
		now.After(*b.PaymentExpiresAt)
}

// PaymentTimeRemaining is the countdown shown to the customer, derived on each read
// Returns 0 when there is no pending payment or the deadline has passed
func (b *Booking) PaymentTimeRemaining(now time.Time) time.Duration {
	if b.Status != StatusAwaitingPayment || b.PaymentExpiresAt == nil {
		return 0
	}
	remaining := b.PaymentExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BarberBookingsFilter фильтр для получения бронирований барбера за день
type BarberBookingsFilter struct {
	BarberID        int64     // Обязательный параметр
	Date            time.Time // День календаря
	IncludeInactive bool      // Включать ли отмененные бронирования
}
