package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/barberly/booking-engine/internal/domain"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	"github.com/barberly/booking-engine/internal/slots"
	"github.com/barberly/booking-engine/pkg/types"
)

// UseCase use case для получения доступных слотов барбера
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: barber=%d, service=%d, date=%s",
		req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Проверяем барбера
	if _, err := uc.catalogRepo.GetBarber(ctx, req.BarberID); err != nil {
		if errors.Is(err, catalogRepo.ErrBarberNotFound) {
			uc.logger.Warn("GetAvailableSlots: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	// 3. Получаем услугу и сводим вариант к конкретной длительности
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	resolved, err := service.Resolve(req.OptionID)
	if err != nil {
		if errors.Is(err, domain.ErrServiceOptionNotFound) {
			uc.logger.Warn("GetAvailableSlots: %v", err)
			return nil, ErrServiceOptionNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to resolve service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	resp := &Response{
		BarberID:        req.BarberID,
		ServiceID:       req.ServiceID,
		OptionID:        resolved.OptionID,
		Date:            req.Date,
		DurationMinutes: resolved.DurationMinutes,
		Slots:           []types.TimeString{},
	}

	// 4. Прошедшие даты не бронируются
	if uc.policy.IsPastDate(req.Date, now) {
		uc.logger.Info("GetAvailableSlots: date %s is in the past", req.Date.Format(domain.DateFormat))
		return resp, nil
	}

	// 5. Расписание на день недели; отсутствие = выходной, а не ошибка
	schedule, err := uc.scheduleRepo.GetSchedule(ctx, req.BarberID, req.Date.Weekday())
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Info("GetAvailableSlots: barber id=%d does not work on %s", req.BarberID, req.Date.Weekday())
			resp.Closed = true
			return resp, nil
		}
		uc.logger.Error("GetAvailableSlots: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	// 6. Реестр занятости на день
	ledger, err := uc.bookingRepo.GetActiveByBarberAndDate(ctx, req.BarberID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 7. Генерация и отсечение слотов, нарушающих минимальное время до записи
	seq, err := slots.Generate(schedule, ledger, resolved.DurationMinutes, uc.policy.SlotGranularityMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	for slot := range seq {
		if uc.policy.IsTooLate(req.Date, slot, now) {
			continue
		}
		resp.Slots = append(resp.Slots, slot)
	}

	uc.logger.Info("GetAvailableSlots: found %d slots for barber=%d on %s",
		len(resp.Slots), req.BarberID, req.Date.Format(domain.DateFormat))

	return resp, nil
}
