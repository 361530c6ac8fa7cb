package get_barber_bookings

import (
	"strconv"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/service/bookings/models"
)

// ToServiceRequest создает запрос сервиса из query параметров
// includeInactive необязателен, по умолчанию false
func ToServiceRequest(policy domain.BookingPolicy, barberID int64, dateStr, includeInactiveStr string) (*models.GetBarberDayRequest, error) {
	date, err := policy.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	includeInactive := false
	if includeInactiveStr != "" {
		if includeInactive, err = strconv.ParseBool(includeInactiveStr); err != nil {
			return nil, err
		}
	}

	return &models.GetBarberDayRequest{
		BarberID:        barberID,
		Date:            date,
		IncludeInactive: includeInactive,
	}, nil
}
