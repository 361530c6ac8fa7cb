package get_schedule

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/barberly/booking-engine/internal/api/handlers"
	"github.com/barberly/booking-engine/internal/service/schedules"
)

const (
	msgInvalidBarberID = "некорректный ID барбера"
	msgInvalidWeekday  = "некорректный день недели, ожидается 0-6 (0 = воскресенье)"
	msgNotFound        = "у барбера выходной в этот день недели"
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

// Handle GET /api/v1/barbers/{barberId}/schedule/{weekday}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	barberID, err := strconv.ParseInt(vars["barberId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/schedule/{weekday} - Invalid barber ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBarberID)
		return
	}

	weekday, err := ParseWeekday(vars["weekday"])
	if err != nil {
		h.logger.Warn("GET /barbers/{id}/schedule/{weekday} - Invalid weekday: %v", err)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return
	}

	result, err := h.service.Get(r.Context(), barberID, weekday)
	if err != nil {
		switch {
		case errors.Is(err, schedules.ErrScheduleNotFound):
			h.logger.Warn("GET /barbers/{id}/schedule/{weekday} - Not found: barber_id=%d, weekday=%s", barberID, weekday)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /barbers/{id}/schedule/{weekday} - Failed to get schedule: barber_id=%d, error=%v",
				barberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /barbers/{id}/schedule/{weekday} - Schedule retrieved successfully: barber_id=%d, weekday=%s",
		barberID, weekday)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// ParseWeekday разбирает день недели 0-6, где 0 = воскресенье
func ParseWeekday(s string) (time.Weekday, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < int(time.Sunday) || n > int(time.Saturday) {
		return 0, strconv.ErrRange
	}
	return time.Weekday(n), nil
}
