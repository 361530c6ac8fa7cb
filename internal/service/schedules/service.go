package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	"github.com/barberly/booking-engine/internal/service/schedules/models"
)

// Service сервис для администрирования расписаний барберов
type Service struct {
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Get получает расписание барбера на день недели
// Публичный метод, используется в админке и витрине
func (s *Service) Get(ctx context.Context, barberID int64, weekday time.Weekday) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule for barber=%d, weekday=%s", barberID, weekday)

	schedule, err := s.scheduleRepo.GetSchedule(ctx, barberID, weekday)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Get: no schedule for barber=%d, weekday=%s", barberID, weekday)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Get: repository error for barber=%d: %v", barberID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// Upsert создает или заменяет расписание барбера на день недели вместе с перерывами
func (s *Service) Upsert(ctx context.Context, req *models.UpsertScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Upsert: saving schedule for barber=%d, weekday=%s, %s-%s, pauses=%d",
		req.BarberID, req.Weekday, req.StartTime, req.EndTime, len(req.Pauses))

	schedule, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("Upsert: invalid time format: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := schedule.Validate(); err != nil {
		s.logger.Warn("Upsert: invalid schedule for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.catalogRepo.GetBarber(ctx, req.BarberID); err != nil {
		if errors.Is(err, catalogRepo.ErrBarberNotFound) {
			s.logger.Warn("Upsert: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		s.logger.Error("Upsert: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrInternal, err)
	}

	var saved *domain.ScheduleDefinition
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		var upsertErr error
		saved, upsertErr = s.scheduleRepo.Upsert(txCtx, schedule)
		return upsertErr
	})
	if err != nil {
		s.logger.Error("Upsert: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully saved schedule id=%d for barber=%d", saved.ID, saved.BarberID)
	return models.FromDomainSchedule(saved), nil
}
