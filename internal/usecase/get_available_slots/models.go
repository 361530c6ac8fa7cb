package get_available_slots

import (
	"time"

	"github.com/barberly/booking-engine/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	BarberID  int64     // ID барбера
	ServiceID int64     // ID услуги
	OptionID  *int64    // ID варианта услуги (опционально)
	Date      time.Time // Дата (без времени, в зоне барбершопа)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	BarberID        int64
	ServiceID       int64
	OptionID        *int64
	Date            time.Time
	DurationMinutes int                // Длительность выбранной услуги/варианта
	Closed          bool               // true, если у барбера нет расписания на этот день недели
	Slots           []types.TimeString // Время начала, по возрастанию
}
