package create_booking

import (
	"errors"
	"net/http"

	"github.com/barberly/booking-engine/internal/api/handlers"
	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/slots"
	createBooking "github.com/barberly/booking-engine/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidRequest       = "некорректные данные бронирования"
	msgOutsideWorkingHours  = "выбранное время вне рабочих часов барбера"
	msgWithinPause          = "выбранное время пересекается с перерывом барбера"
	msgConflict             = "выбранное время уже занято"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgBarberNotFound       = "барбер не найден"
	msgServiceNotFound      = "услуга не найдена"
	msgServiceOptionMissing = "вариант услуги не найден"
	msgInvalidBookingDate   = "дата бронирования в прошлом"
	msgTooLateToBook        = "слишком поздно для бронирования этого слота"
)

type Handler struct {
	useCase CreateBookingUseCase
	policy  domain.BookingPolicy
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, policy domain.BookingPolicy, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		policy:  policy,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req.resolveAliases()
	if err := handlers.Validate(&req); err != nil {
		h.logger.Warn("POST /bookings - Validation failed: %v", err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(h.policy)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequest)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotUnavailable):
			reason := slots.Reason(err)
			h.logger.Warn("POST /bookings - Slot not available: barber_id=%d, date=%s, time=%s, reason=%s",
				req.BarberID, req.Date, req.Time, reason)
			handlers.RespondErrorWithReason(w, http.StatusConflict, slotMessage(err), reason)

		case errors.Is(err, createBooking.ErrBarberNotFound):
			h.logger.Warn("POST /bookings - Barber not found: barber_id=%d", req.BarberID)
			handlers.RespondNotFound(w, msgBarberNotFound)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrServiceOptionNotFound):
			h.logger.Warn("POST /bookings - Service option not found: service_id=%d, option_id=%v",
				req.ServiceID, req.ServiceOptionID)
			handlers.RespondNotFound(w, msgServiceOptionMissing)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: date=%s, time=%s", req.Date, req.Time)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: customer_id=%d, barber_id=%d, error=%v",
				req.CustomerID, req.BarberID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, barber_id=%d, status=%s",
		result.ID, result.BarberID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, response)
}

func slotMessage(err error) string {
	switch {
	case errors.Is(err, createBooking.ErrOutsideWorkingHours):
		return msgOutsideWorkingHours
	case errors.Is(err, createBooking.ErrWithinPause):
		return msgWithinPause
	case errors.Is(err, createBooking.ErrConflictsWithExistingBooking):
		return msgConflict
	}
	return msgSlotNotAvailable
}
