package domain

import (
	"time"

	"github.com/barberly/booking-engine/pkg/types"
)

// BookingPolicy tunables of the availability and reservation engine
type BookingPolicy struct {
	// SlotGranularityMinutes step between candidate start times
	SlotGranularityMinutes int
	// MinNoticeMinutes minimum lead time for same-day bookings (0 = none)
	MinNoticeMinutes int
	// PaymentGracePeriod how long an AwaitingPayment booking holds its slot
	PaymentGracePeriod time.Duration
	// DeferredPaymentMethods methods that create bookings in AwaitingPayment
	DeferredPaymentMethods []PaymentMethod
	// Location barbershop wall-clock zone; schedules and dates are interpreted in it
	Location *time.Location
}

// DefaultBookingPolicy returns the observed production defaults
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		SlotGranularityMinutes: DefaultSlotGranularityMinutes,
		MinNoticeMinutes:       DefaultMinNoticeMinutes,
		PaymentGracePeriod:     DefaultPaymentGraceMinutes * time.Minute,
		DeferredPaymentMethods: []PaymentMethod{PaymentPix, PaymentBankTransfer},
		Location:               time.UTC,
	}
}

// IsDeferred returns true if bookings paid with m must wait for payment confirmation
func (p BookingPolicy) IsDeferred(m PaymentMethod) bool {
	for _, deferred := range p.DeferredPaymentMethods {
		if deferred == m {
			return true
		}
	}
	return false
}

// InitialStatus returns the state a new booking starts in
func (p BookingPolicy) InitialStatus(m PaymentMethod) BookingStatus {
	if p.IsDeferred(m) {
		return StatusAwaitingPayment
	}
	return StatusPending
}

// PaymentDeadline returns paymentExpiresAt for a booking created at now, nil for immediate methods
func (p BookingPolicy) PaymentDeadline(m PaymentMethod, now time.Time) *time.Time {
	if !p.IsDeferred(m) {
		return nil
	}
	deadline := now.Add(p.PaymentGracePeriod)
	return &deadline
}

// Local converts an instant to the barbershop wall clock
func (p BookingPolicy) Local(t time.Time) time.Time {
	if p.Location == nil {
		return t
	}
	return t.In(p.Location)
}

// ParseDate parses YYYY-MM-DD as a calendar day in the barbershop zone
func (p BookingPolicy) ParseDate(s string) (time.Time, error) {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateFormat, s, loc)
}

// IsPastDate returns true if date is a calendar day before today
func (p BookingPolicy) IsPastDate(date, now time.Time) bool {
	now = p.Local(now)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	y, m, d = date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	return day.Before(today)
}

// IsTooLate returns true if a slot starting at start on date violates the minimum notice
// Slots already in the past are always too late
func (p BookingPolicy) IsTooLate(date time.Time, start types.TimeString, now time.Time) bool {
	now = p.Local(now)
	y, m, d := date.Date()
	slotStart := start.On(time.Date(y, m, d, 0, 0, 0, 0, now.Location()))
	return slotStart.Before(now.Add(time.Duration(p.MinNoticeMinutes) * time.Minute))
}
