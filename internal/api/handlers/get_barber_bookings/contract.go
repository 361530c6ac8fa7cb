package get_barber_bookings

import (
	"context"

	"github.com/barberly/booking-engine/internal/service/bookings/models"
)

type BookingService interface {
	GetBarberDay(ctx context.Context, req *models.GetBarberDayRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
