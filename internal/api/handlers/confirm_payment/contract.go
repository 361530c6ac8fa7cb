package confirm_payment

import (
	"context"

	"github.com/barberly/booking-engine/internal/service/bookings/models"
)

type BookingService interface {
	ConfirmPayment(ctx context.Context, bookingID int64) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
