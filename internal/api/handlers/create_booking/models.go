package create_booking

import (
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	createBooking "github.com/barberly/booking-engine/internal/usecase/create_booking"
	"github.com/barberly/booking-engine/pkg/types"
)

// CreateBookingRequest HTTP request model
// bookingDate и startTime принимаются как синонимы date и time
type CreateBookingRequest struct {
	BarberID        int64   `json:"barberId" validate:"gt=0"`
	ServiceID       int64   `json:"serviceId" validate:"gt=0"`
	ServiceOptionID *int64  `json:"serviceOptionId,omitempty" validate:"omitempty,gt=0"`
	CustomerID      int64   `json:"customerId,omitempty" validate:"gte=0"`
	CustomerName    string  `json:"customerName" validate:"max=100"`
	CustomerPhone   *string `json:"customerPhone,omitempty"`
	Date            string  `json:"date" validate:"required,date"` // "2025-10-15"
	Time            string  `json:"time" validate:"required,hhmm"` // "10:00"
	BookingDate     string  `json:"bookingDate,omitempty"`
	StartTime       string  `json:"startTime,omitempty"`
	PaymentMethod   string  `json:"paymentMethod" validate:"required,payment_method"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// resolveAliases переносит bookingDate/startTime в date/time, если последние не заданы
func (r *CreateBookingRequest) resolveAliases() {
	if r.Date == "" {
		r.Date = r.BookingDate
	}
	if r.Time == "" {
		r.Time = r.StartTime
	}
}

// BookingResponse HTTP response model
type BookingResponse struct {
	BookingID        int64   `json:"bookingId"`
	ID               int64   `json:"id"`
	BarberID         int64   `json:"barberId"`
	ServiceID        int64   `json:"serviceId"`
	ServiceOptionID  *int64  `json:"serviceOptionId,omitempty"`
	CustomerID       int64   `json:"customerId"`
	BookingDate      string  `json:"bookingDate"`
	StartTime        string  `json:"startTime"`
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	PaymentMethod    string  `json:"paymentMethod"`
	PaymentExpiresAt *string `json:"paymentExpiresAt,omitempty"`
	BarberName       string  `json:"barberName"`
	ServiceName      string  `json:"serviceName"`
	Price            float64 `json:"price"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Дата интерпретируется как календарный день в часовом поясе барбершопа
func (r *CreateBookingRequest) ToUseCaseRequest(policy domain.BookingPolicy) (*createBooking.Request, error) {
	r.resolveAliases()

	bookingDate, err := policy.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		BarberID:      r.BarberID,
		ServiceID:     r.ServiceID,
		OptionID:      r.ServiceOptionID,
		CustomerID:    r.CustomerID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Date:          bookingDate,
		StartTime:     startTime,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	result := &BookingResponse{
		BookingID:       resp.ID,
		ID:              resp.ID,
		BarberID:        resp.BarberID,
		ServiceID:       resp.ServiceID,
		ServiceOptionID: resp.ServiceOptionID,
		CustomerID:      resp.CustomerID,
		BookingDate:     resp.BookingDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          string(resp.Status),
		PaymentMethod:   string(resp.PaymentMethod),
		BarberName:      resp.BarberName,
		ServiceName:     resp.ServiceName,
		Price:           resp.Price,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
	}

	if resp.PaymentExpiresAt != nil {
		expiresAt := resp.PaymentExpiresAt.Format(time.RFC3339)
		result.PaymentExpiresAt = &expiresAt
	}

	return result
}
