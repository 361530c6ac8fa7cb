package models

import (
	"errors"
	"math"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
)

var (
	// ErrInvalidCancellationReason возвращается при неизвестной причине отмены
	ErrInvalidCancellationReason = errors.New("invalid cancellation reason")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Reason string `json:"reason"` // customer | staff
}

// ToDomainReason конвертирует причину отмены, запрошенную через API
// payment_expired выставляется только наблюдателем оплаты
func (r *CancelBookingRequest) ToDomainReason() (domain.CancellationReason, error) {
	switch reason := domain.CancellationReason(r.Reason); reason {
	case domain.CancelledByCustomer, domain.CancelledByStaff:
		return reason, nil
	case "":
		return domain.CancelledByCustomer, nil
	}
	return "", ErrInvalidCancellationReason
}

// GetBarberDayRequest запрос на получение бронирований барбера за день
type GetBarberDayRequest struct {
	BarberID        int64
	Date            time.Time
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetBarberDayRequest) ToDomainFilter() domain.BarberBookingsFilter {
	return domain.BarberBookingsFilter{
		BarberID:        r.BarberID,
		Date:            r.Date,
		IncludeInactive: r.IncludeInactive,
	}
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	BarberID        int64  `json:"barberId"`
	ServiceID       int64  `json:"serviceId"`
	ServiceOptionID *int64 `json:"serviceOptionId,omitempty"`
	CustomerID      int64  `json:"customerId"`
	BookingDate     string `json:"bookingDate"` // "2025-10-15"
	StartTime       string `json:"startTime"`   // "10:00"
	EndTime         string `json:"endTime"`     // "10:30"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`
	PaymentMethod   string `json:"paymentMethod"`

	// Обратный отсчет оплаты, вычисляется при каждом чтении
	PaymentExpiresAt        *time.Time `json:"paymentExpiresAt,omitempty"`
	PaymentSecondsRemaining *int64     `json:"paymentSecondsRemaining,omitempty"`

	// Денормализованные данные
	CustomerName  string  `json:"customerName"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	BarberName    string  `json:"barberName"`
	ServiceName   string  `json:"serviceName"`
	Price         float64 `json:"price"`
	Notes         *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO на момент now
func FromDomainBooking(b *domain.Booking, now time.Time) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:               b.ID,
		BarberID:         b.BarberID,
		ServiceID:        b.ServiceID,
		ServiceOptionID:  b.ServiceOptionID,
		CustomerID:       b.CustomerID,
		BookingDate:      b.BookingDate.Format(domain.DateFormat),
		StartTime:        b.StartTime.String(),
		DurationMinutes:  b.DurationMinutes,
		Status:           string(b.Status),
		PaymentMethod:    string(b.PaymentMethod),
		PaymentExpiresAt: b.PaymentExpiresAt,
		CustomerName:     b.CustomerName,
		CustomerPhone:    b.CustomerPhone,
		BarberName:       b.BarberName,
		ServiceName:      b.ServiceName,
		Price:            b.Price,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}

	if end, err := b.EndTime(); err == nil {
		resp.EndTime = end.String()
	}

	if b.Status == domain.StatusAwaitingPayment && b.PaymentExpiresAt != nil {
		seconds := int64(math.Ceil(b.PaymentTimeRemaining(now).Seconds()))
		resp.PaymentSecondsRemaining = &seconds
	}

	if b.CancellationReason != nil {
		reason := string(*b.CancellationReason)
		resp.CancellationReason = &reason
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking, now time.Time) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking, now); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
