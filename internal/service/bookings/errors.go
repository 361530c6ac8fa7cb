package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrAlreadyCancelled возвращается, когда бронирование уже отменено (в т.ч. истек срок оплаты)
	ErrAlreadyCancelled = errors.New("bookings: booking already cancelled")

	// ErrAlreadyConfirmed возвращается, когда бронирование уже подтверждено
	ErrAlreadyConfirmed = errors.New("bookings: booking already confirmed")

	// ErrInvalidTransition возвращается, когда переход не разрешен машиной состояний
	ErrInvalidTransition = errors.New("bookings: invalid status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")

	// errPaymentOverdue внутренний сигнал: подтверждение оплаты пришло после дедлайна
	errPaymentOverdue = errors.New("bookings: payment overdue")
)
