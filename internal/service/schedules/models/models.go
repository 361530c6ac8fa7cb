package models

import (
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/types"
)

// PauseDTO перерыв внутри рабочего дня
type PauseDTO struct {
	StartTime string `json:"startTime" validate:"required"` // "13:00"
	EndTime   string `json:"endTime" validate:"required"`   // "14:00"
}

// UpsertScheduleRequest запрос на сохранение расписания барбера на день недели
type UpsertScheduleRequest struct {
	BarberID  int64
	Weekday   time.Weekday
	StartTime string     `json:"startTime" validate:"required"`
	EndTime   string     `json:"endTime" validate:"required"`
	Pauses    []PauseDTO `json:"pauses" validate:"dive"`
}

// ToDomainSchedule конвертирует запрос в domain модель
func (r *UpsertScheduleRequest) ToDomainSchedule() (*domain.ScheduleDefinition, error) {
	start, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	pauses := make([]domain.Pause, 0, len(r.Pauses))
	for _, p := range r.Pauses {
		ps, err := types.NewTimeStringFromString(p.StartTime)
		if err != nil {
			return nil, err
		}
		pe, err := types.NewTimeStringFromString(p.EndTime)
		if err != nil {
			return nil, err
		}
		pauses = append(pauses, domain.Pause{StartTime: ps, EndTime: pe})
	}

	return &domain.ScheduleDefinition{
		BarberID:  r.BarberID,
		Weekday:   r.Weekday,
		StartTime: start,
		EndTime:   end,
		Pauses:    pauses,
	}, nil
}

// ScheduleResponse ответ с расписанием барбера на день недели
type ScheduleResponse struct {
	ID        int64      `json:"id"`
	BarberID  int64      `json:"barberId"`
	Weekday   int        `json:"weekday"` // 0 = воскресенье
	StartTime string     `json:"startTime"`
	EndTime   string     `json:"endTime"`
	Pauses    []PauseDTO `json:"pauses"`
}

// FromDomainSchedule конвертирует domain модель в DTO
func FromDomainSchedule(s *domain.ScheduleDefinition) *ScheduleResponse {
	if s == nil {
		return nil
	}

	pauses := make([]PauseDTO, 0, len(s.Pauses))
	for _, p := range s.SortedPauses() {
		pauses = append(pauses, PauseDTO{StartTime: p.StartTime.String(), EndTime: p.EndTime.String()})
	}

	return &ScheduleResponse{
		ID:        s.ID,
		BarberID:  s.BarberID,
		Weekday:   int(s.Weekday),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
		Pauses:    pauses,
	}
}
