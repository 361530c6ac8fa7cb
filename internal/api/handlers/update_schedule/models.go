package update_schedule

import (
	"time"

	"github.com/barberly/booking-engine/internal/service/schedules/models"
)

// PauseRequest перерыв внутри рабочего дня
type PauseRequest struct {
	StartTime string `json:"startTime" validate:"required,hhmm"`
	EndTime   string `json:"endTime" validate:"required,hhmm"`
}

// UpdateScheduleRequest HTTP request model
type UpdateScheduleRequest struct {
	StartTime string         `json:"startTime" validate:"required,hhmm"`
	EndTime   string         `json:"endTime" validate:"required,hhmm"`
	Pauses    []PauseRequest `json:"pauses,omitempty" validate:"dive"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateScheduleRequest) ToServiceRequest(barberID int64, weekday time.Weekday) *models.UpsertScheduleRequest {
	pauses := make([]models.PauseDTO, 0, len(r.Pauses))
	for _, p := range r.Pauses {
		pauses = append(pauses, models.PauseDTO{StartTime: p.StartTime, EndTime: p.EndTime})
	}

	return &models.UpsertScheduleRequest{
		BarberID:  barberID,
		Weekday:   weekday,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Pauses:    pauses,
	}
}
