package create_booking

import (
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	BarberID      int64                // ID барбера
	ServiceID     int64                // ID услуги
	OptionID      *int64               // ID варианта услуги (опционально)
	CustomerID    int64                // ID клиента
	CustomerName  string               // Имя клиента
	CustomerPhone *string              // Телефон клиента (опционально)
	Date          time.Time            // Дата бронирования (без времени, в зоне барбершопа)
	StartTime     types.TimeString     // Время начала слота (например, "10:00")
	PaymentMethod domain.PaymentMethod // Способ оплаты
	Notes         *string              // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID               int64
	BarberID         int64
	ServiceID        int64
	ServiceOptionID  *int64
	CustomerID       int64
	BookingDate      time.Time
	StartTime        types.TimeString
	DurationMinutes  int
	Status           domain.BookingStatus
	PaymentMethod    domain.PaymentMethod
	PaymentExpiresAt *time.Time // Только для AwaitingPayment

	// Денормализованные данные
	BarberName  string
	ServiceName string
	Price       float64
	Notes       *string

	CreatedAt time.Time
}
