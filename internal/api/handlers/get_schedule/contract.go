package get_schedule

import (
	"context"
	"time"

	"github.com/barberly/booking-engine/internal/service/schedules/models"
)

type ScheduleService interface {
	Get(ctx context.Context, barberID int64, weekday time.Weekday) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
