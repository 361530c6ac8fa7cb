package create_booking

import (
	"context"

	createBooking "github.com/barberly/booking-engine/internal/usecase/create_booking"
)

// CreateBookingUseCase резервирует слот на календаре барбера
type CreateBookingUseCase interface {
	Execute(ctx context.Context, req *createBooking.Request) (*createBooking.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
