package domain

// Default booking policy values
const (
	DefaultSlotGranularityMinutes = 30
	DefaultPaymentGraceMinutes    = 15
	DefaultMinNoticeMinutes       = 0
)

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxNotesLength            = 500
	MaxCustomerNameLength     = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые занимают время в календаре барбера
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusAwaitingPayment,
	StatusConfirmed,
}
