package expire_payments

import (
	"context"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetOverduePayments(ctx context.Context, now time.Time, limit int) ([]*domain.Booking, error)
}

// Expirer выполняет идемпотентный переход AwaitingPayment -> Cancelled
type Expirer interface {
	ExpireIfOverdue(ctx context.Context, booking *domain.Booking) (bool, error)
}

// Metrics интерфейс метрик прохода
type Metrics interface {
	SweepCompleted(expired int, duration time.Duration)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
