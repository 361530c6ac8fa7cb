package schedules

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда у барбера выходной в этот день недели
	ErrScheduleNotFound = errors.New("schedules: schedule not found")

	// ErrBarberNotFound возвращается, когда барбер не найден
	ErrBarberNotFound = errors.New("schedules: barber not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("schedules: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedules: internal error")
)
