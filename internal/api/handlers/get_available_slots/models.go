package get_available_slots

import (
	"strconv"

	"github.com/barberly/booking-engine/internal/domain"
	getAvailableSlots "github.com/barberly/booking-engine/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string   `json:"date"`
	BarberID        int64    `json:"barberId"`
	ServiceID       int64    `json:"serviceId"`
	ServiceOptionID *int64   `json:"serviceOptionId,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Closed          bool     `json:"closed"`
	Slots           []string `json:"slots"` // ["09:00", "09:30", ...]
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = slot.String()
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		BarberID:        resp.BarberID,
		ServiceID:       resp.ServiceID,
		ServiceOptionID: resp.OptionID,
		DurationMinutes: resp.DurationMinutes,
		Closed:          resp.Closed,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
// Дата интерпретируется как календарный день в часовом поясе барбершопа
func ToUseCaseRequest(policy domain.BookingPolicy, barberID, serviceID int64, optionIDStr, dateStr string) (*getAvailableSlots.Request, error) {
	date, err := policy.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	var optionID *int64
	if optionIDStr != "" {
		id, err := strconv.ParseInt(optionIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		optionID = &id
	}

	return &getAvailableSlots.Request{
		BarberID:  barberID,
		ServiceID: serviceID,
		OptionID:  optionID,
		Date:      date,
	}, nil
}
