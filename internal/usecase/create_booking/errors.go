package create_booking

import (
	"errors"

	"github.com/barberly/booking-engine/internal/slots"
)

var (
	// ErrBarberNotFound возвращается, когда барбер не найден
	ErrBarberNotFound = errors.New("create_booking: barber not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceOptionNotFound возвращается, когда вариант не принадлежит услуге
	ErrServiceOptionNotFound = errors.New("create_booking: service option not found")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrTooLateToBook возвращается, когда слот начинается раньше, чем позволяет минимальное время до записи
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrPersistence возвращается, когда хранилище недоступно; бронирование не создано
	ErrPersistence = errors.New("create_booking: persistence failure")
)

// Причины недоступности слота; все оборачивают ErrSlotUnavailable
var (
	ErrSlotUnavailable              = slots.ErrSlotUnavailable
	ErrOutsideWorkingHours          = slots.ErrOutsideWorkingHours
	ErrWithinPause                  = slots.ErrWithinPause
	ErrConflictsWithExistingBooking = slots.ErrConflictsWithExistingBooking
)
