package update_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/barberly/booking-engine/internal/api/handlers"
	"github.com/barberly/booking-engine/internal/api/handlers/get_schedule"
	"github.com/barberly/booking-engine/internal/service/schedules"
)

const (
	msgInvalidBarberID    = "некорректный ID барбера"
	msgInvalidWeekday     = "некорректный день недели, ожидается 0-6 (0 = воскресенье)"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgBarberNotFound     = "барбер не найден"
	msgInvalidData        = "некорректное расписание: начало раньше конца, перерывы внутри рабочего дня и не пересекаются"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/barbers/{barberId}/schedule/{weekday}
// Полностью заменяет расписание дня вместе с перерывами
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	weekday, err := get_schedule.ParseWeekday(vars["weekday"])
	if err != nil {
		h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Invalid weekday: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	var req UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Upsert(r.Context(), req.ToServiceRequest(barberID, weekday))
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrBarberNotFound):
			h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Barber not found: barber_id=%d", barberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, schedules.ErrInvalidInput):
			h.logger.Warn("PUT /barbers/{id}/schedule/{weekday} - Invalid data: barber_id=%d, error=%v", barberID, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /barbers/{id}/schedule/{weekday} - Failed to save schedule: barber_id=%d, error=%v",
				barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /barbers/{id}/schedule/{weekday} - Schedule saved successfully: barber_id=%d, weekday=%s, schedule_id=%d",
		barberID, weekday, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
