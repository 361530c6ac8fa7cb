package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/locker"
	bookingRepo "github.com/barberly/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	"github.com/barberly/booking-engine/internal/slots"
	"github.com/barberly/booking-engine/pkg/txmanager"
)

// Исходы резервирования для метрик
const (
	OutcomeCreated = "created"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// UseCase use case для создания бронирования (координатор резервирований)
//
// Повторная проверка слота и запись выполняются атомарно относительно других
// резервирований того же барбера: блокировка (барбер, день), сериализуемая транзакция
// с SELECT ... FOR UPDATE и exclusion constraint в БД как последний рубеж.
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	catalogRepo  CatalogRepository
	txManager    TransactionManager
	locker       Locker
	publisher    EventPublisher
	metrics      Metrics
	policy       domain.BookingPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	catalogRepo CatalogRepository,
	txManager TransactionManager,
	bookingLocker Locker,
	publisher EventPublisher,
	metrics Metrics,
	policy domain.BookingPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		locker:       bookingLocker,
		publisher:    publisher,
		metrics:      metrics,
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

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, barber=%d, service=%d, date=%s, time=%s, payment=%s",
		req.CustomerID, req.BarberID, req.ServiceID, req.Date.Format(domain.DateFormat), req.StartTime, req.PaymentMethod)

	booking, err := uc.reserve(ctx, req)
	uc.metrics.ReservationOutcome(outcome(err))
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d, status=%s", booking.ID, booking.Status)

	// Событие публикуется после фиксации; сбой доставки не отменяет бронирование
	if booking.Status == domain.StatusAwaitingPayment {
		event := domain.NewPaymentPendingEvent(booking, uc.timeProvider.Now())
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.logger.Warn("CreateBooking: failed to publish %s for booking id=%d: %v", event.Type, booking.ID, err)
		}
	}

	return toResponse(booking), nil
}

func (uc *UseCase) reserve(ctx context.Context, req *Request) (*domain.Booking, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Валидация даты и минимального времени до записи
	if uc.policy.IsPastDate(req.Date, now) {
		uc.logger.Warn("CreateBooking: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}
	if uc.policy.IsTooLate(req.Date, req.StartTime, now) {
		uc.logger.Warn("CreateBooking: slot %s %s violates min notice of %d minutes",
			req.Date.Format(domain.DateFormat), req.StartTime, uc.policy.MinNoticeMinutes)
		return nil, fmt.Errorf("%w: must book at least %d minutes in advance", ErrTooLateToBook, uc.policy.MinNoticeMinutes)
	}

	// 3. Получаем барбера
	barber, err := uc.catalogRepo.GetBarber(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrBarberNotFound) {
			uc.logger.Warn("CreateBooking: barber id=%d not found", req.BarberID)
			return nil, ErrBarberNotFound
		}
		uc.logger.Error("CreateBooking: failed to get barber id=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: failed to get barber: %v", ErrPersistence, err)
	}

	// 4. Получаем услугу и сводим вариант к конкретной длительности и цене
	service, err := uc.catalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrPersistence, err)
	}

	resolved, err := service.Resolve(req.OptionID)
	if err != nil {
		if errors.Is(err, domain.ErrServiceOptionNotFound) {
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, ErrServiceOptionNotFound
		}
		uc.logger.Error("CreateBooking: failed to resolve service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 5. Расписание на день недели; выходной = вне рабочего времени
	schedule, err := uc.scheduleRepo.GetSchedule(ctx, req.BarberID, req.Date.Weekday())
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			uc.logger.Warn("CreateBooking: barber id=%d does not work on %s", req.BarberID, req.Date.Weekday())
			return nil, fmt.Errorf("%w: barber does not work on %s", ErrOutsideWorkingHours, req.Date.Weekday())
		}
		uc.logger.Error("CreateBooking: failed to get schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrPersistence, err)
	}

	// 6. Блокировка календаря барбера на день
	key := locker.BarberDayKey(req.BarberID, req.Date)
	unlock, err := uc.locker.Lock(ctx, key)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to acquire lock %s: %v", key, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer unlock()

	var result *domain.Booking

	// 7. Повторная проверка по свежему реестру и запись в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		ledger, err := uc.bookingRepo.GetActiveByBarberAndDate(txCtx, req.BarberID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get bookings: %v", ErrPersistence, err)
		}

		if err := slots.Check(schedule, ledger, req.StartTime, resolved.DurationMinutes); err != nil {
			return err
		}

		status := uc.policy.InitialStatus(req.PaymentMethod)
		booking := &domain.Booking{
			BarberID:         req.BarberID,
			ServiceID:        req.ServiceID,
			ServiceOptionID:  resolved.OptionID,
			CustomerID:       req.CustomerID,
			BookingDate:      req.Date,
			StartTime:        req.StartTime,
			DurationMinutes:  resolved.DurationMinutes,
			Status:           status,
			PaymentMethod:    req.PaymentMethod,
			PaymentExpiresAt: uc.policy.PaymentDeadline(req.PaymentMethod, now),
			// Денормализация для уведомлений и истории
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			BarberName:    barber.Name,
			ServiceName:   resolved.Name,
			Price:         resolved.Price,
			Notes:         req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			return err
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.classify(req, err)
	}

	return result, nil
}

// classify сводит ошибки транзакции к таксономии резервирования
func (uc *UseCase) classify(req *Request, err error) error {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		uc.logger.Warn("CreateBooking: slot %s %s unavailable for barber=%d: %v",
			req.Date.Format(domain.DateFormat), req.StartTime, req.BarberID, err)
		return err

	case errors.Is(err, bookingRepo.ErrSlotNotAvailable), txmanager.IsSerializationFailure(err):
		// Конкурентная запись выиграла гонку, которую не остановила блокировка
		uc.logger.Warn("CreateBooking: lost concurrent reservation for barber=%d at %s %s: %v",
			req.BarberID, req.Date.Format(domain.DateFormat), req.StartTime, err)
		return fmt.Errorf("%w: concurrent reservation", ErrConflictsWithExistingBooking)

	case errors.Is(err, ErrPersistence):
		uc.logger.Error("CreateBooking: %v", err)
		return err

	default:
		uc.logger.Error("CreateBooking: failed to create booking: %v", err)
		return fmt.Errorf("%w: failed to create booking: %v", ErrPersistence, err)
	}
}

func outcome(err error) string {
	if err == nil {
		return OutcomeCreated
	}
	if reason := slots.Reason(err); reason != "" {
		return reason
	}
	if errors.Is(err, ErrPersistence) {
		return OutcomeFailed
	}
	return OutcomeInvalid
}

func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:               b.ID,
		BarberID:         b.BarberID,
		ServiceID:        b.ServiceID,
		ServiceOptionID:  b.ServiceOptionID,
		CustomerID:       b.CustomerID,
		BookingDate:      b.BookingDate,
		StartTime:        b.StartTime,
		DurationMinutes:  b.DurationMinutes,
		Status:           b.Status,
		PaymentMethod:    b.PaymentMethod,
		PaymentExpiresAt: b.PaymentExpiresAt,
		BarberName:       b.BarberName,
		ServiceName:      b.ServiceName,
		Price:            b.Price,
		Notes:            b.Notes,
		CreatedAt:        b.CreatedAt,
	}
}
