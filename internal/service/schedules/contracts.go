package schedules

import (
	"context"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, barberID int64, weekday time.Weekday) (*domain.ScheduleDefinition, error)
	Upsert(ctx context.Context, schedule *domain.ScheduleDefinition) (*domain.ScheduleDefinition, error)
}

// CatalogRepository интерфейс каталога барберов
type CatalogRepository interface {
	GetBarber(ctx context.Context, id int64) (*domain.Barber, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
