package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	bookingRepo "github.com/barberly/booking-engine/internal/infra/storage/booking"
	"github.com/barberly/booking-engine/internal/service/bookings/models"
)

// Service сервис для чтения бронирований и всех переходов их статусов
// Каждый переход выполняется условным обновлением (WHERE status = ожидаемый),
// поэтому конкурирующие переходы одного бронирования не перезаписывают друг друга.
type Service struct {
	bookingRepo  BookingRepository
	txManager    TransactionManager
	publisher    EventPublisher
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		txManager:    txManager,
		publisher:    publisher,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID
// Просроченное ожидание оплаты отменяется до ответа, поэтому клиент никогда не видит
// AwaitingPayment после дедлайна, даже если фоновая проверка еще не прошла
func (s *Service) GetByID(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d", id)

	booking, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	if booking.IsPaymentOverdue(now) {
		if _, err := s.ExpireIfOverdue(ctx, booking); err != nil {
			return nil, err
		}
		if booking, err = s.get(ctx, "GetByID", id); err != nil {
			return nil, err
		}
	}

	return models.FromDomainBooking(booking, now), nil
}

// GetBarberDay получает бронирования барбера за день (для дашбордов)
func (s *Service) GetBarberDay(ctx context.Context, req *models.GetBarberDayRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetBarberDay: fetching bookings for barber=%d, date=%s, includeInactive=%t",
		req.BarberID, req.Date.Format(domain.DateFormat), req.IncludeInactive)

	if req.BarberID <= 0 || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: barberID and date are required", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByBarberWithFilter(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("GetBarberDay: repository error for barber=%d: %v", req.BarberID, err)
		return nil, fmt.Errorf("%w: GetBarberDay - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetBarberDay: successfully fetched %d bookings for barber=%d", len(bookings), req.BarberID)
	return models.FromDomainBookingList(bookings, s.timeProvider.Now()), nil
}

// ConfirmPayment подтверждает оплату: AwaitingPayment -> Confirmed
// Если дедлайн прошел, бронирование отменяется, а вызывающий получает ErrAlreadyCancelled
func (s *Service) ConfirmPayment(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("ConfirmPayment: confirming payment for booking id=%d", id)

	booking, err := s.transition(ctx, "ConfirmPayment", id, domain.StatusConfirmed, nil,
		func(b *domain.Booking, now time.Time) error {
			if b.Status != domain.StatusAwaitingPayment {
				return statusError(b.Status)
			}
			if b.IsPaymentOverdue(now) {
				return errPaymentOverdue
			}
			return nil
		})

	if errors.Is(err, errPaymentOverdue) {
		s.logger.Warn("ConfirmPayment: payment window elapsed for booking id=%d", id)
		if overdue, getErr := s.get(ctx, "ConfirmPayment", id); getErr == nil {
			if _, expErr := s.ExpireIfOverdue(ctx, overdue); expErr != nil {
				return nil, expErr
			}
		}
		return nil, fmt.Errorf("%w: payment window elapsed", ErrAlreadyCancelled)
	}
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking, s.timeProvider.Now()), nil
}

// Confirm подтверждает бронирование персоналом: Pending -> Confirmed
func (s *Service) Confirm(ctx context.Context, id int64) (*models.BookingResponse, error) {
	s.logger.Info("Confirm: confirming booking id=%d", id)

	booking, err := s.transition(ctx, "Confirm", id, domain.StatusConfirmed, nil,
		func(b *domain.Booking, _ time.Time) error {
			if b.Status != domain.StatusPending {
				// Бронирование с отложенной оплатой подтверждается только оплатой
				return statusError(b.Status)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking, s.timeProvider.Now()), nil
}

// Cancel отменяет бронирование: Pending | AwaitingPayment -> Cancelled
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	reason, err := req.ToDomainReason()
	if err != nil {
		s.logger.Warn("Cancel: invalid reason %q for booking id=%d", req.Reason, id)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.logger.Info("Cancel: cancelling booking id=%d, reason=%s", id, reason)

	booking, err := s.transition(ctx, "Cancel", id, domain.StatusCancelled, &reason,
		func(b *domain.Booking, _ time.Time) error {
			if !b.Status.CanTransitionTo(domain.StatusCancelled) {
				return statusError(b.Status)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking, s.timeProvider.Now()), nil
}

// ExpireIfOverdue отменяет бронирование, если срок оплаты истек
// Идемпотентна: переход выполняется только из AwaitingPayment, повторный вызов
// или проигрыш гонки с подтверждением возвращают false без ошибки и без события
func (s *Service) ExpireIfOverdue(ctx context.Context, booking *domain.Booking) (bool, error) {
	now := s.timeProvider.Now()
	if !booking.IsPaymentOverdue(now) {
		return false, nil
	}

	reason := domain.CancelledPaymentTimeout
	err := s.bookingRepo.UpdateStatus(ctx, booking.ID, domain.StatusAwaitingPayment, domain.StatusCancelled, &reason, now)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Info("ExpireIfOverdue: booking id=%d already left awaiting_payment", booking.ID)
			return false, nil
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return false, ErrBookingNotFound
		}
		s.logger.Error("ExpireIfOverdue: failed to expire booking id=%d: %v", booking.ID, err)
		return false, fmt.Errorf("%w: ExpireIfOverdue - repository error: %v", ErrInternal, err)
	}

	expired := *booking
	expired.Status = domain.StatusCancelled
	expired.CancellationReason = &reason
	expired.CancelledAt = &now
	expired.UpdatedAt = now

	s.logger.Info("ExpireIfOverdue: booking id=%d cancelled, payment expired at %s",
		booking.ID, booking.PaymentExpiresAt.Format(time.RFC3339))

	s.afterTransition(ctx, &expired, domain.StatusAwaitingPayment, now)

	return true, nil
}

// transition выполняет переход статуса в транзакции: чтение с блокировкой, проверка guard, условное обновление
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	to domain.BookingStatus,
	reason *domain.CancellationReason,
	guard func(b *domain.Booking, now time.Time) error,
) (*domain.Booking, error) {
	now := s.timeProvider.Now()

	var (
		result   *domain.Booking
		previous domain.BookingStatus
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.get(txCtx, op, id)
		if err != nil {
			return err
		}

		if err := guard(booking, now); err != nil {
			return err
		}

		if err := s.bookingRepo.UpdateStatus(txCtx, id, booking.Status, to, reason, now); err != nil {
			return err
		}

		previous = booking.Status
		booking.Status = to
		booking.UpdatedAt = now
		if to == domain.StatusCancelled {
			booking.CancellationReason = reason
			booking.CancelledAt = &now
		}
		result = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			// Статус изменился конкурентно: сообщаем, во что он превратился
			current, getErr := s.get(ctx, op, id)
			if getErr != nil {
				return nil, getErr
			}
			s.logger.Warn("%s: booking id=%d changed concurrently to %s", op, id, current.Status)
			return nil, statusError(current.Status)
		}
		if isTaxonomyError(err) {
			s.logger.Warn("%s: booking id=%d: %v", op, id, err)
			return nil, err
		}
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		s.logger.Error("%s: failed to update booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	s.logger.Info("%s: booking id=%d %s -> %s", op, id, previous, to)
	s.afterTransition(ctx, result, previous, now)

	return result, nil
}

// afterTransition фиксирует метрику и публикует booking.status_changed
func (s *Service) afterTransition(ctx context.Context, booking *domain.Booking, previous domain.BookingStatus, now time.Time) {
	s.metrics.StatusTransition(string(previous), string(booking.Status))

	event := domain.NewStatusChangedEvent(booking, previous, now)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("afterTransition: failed to publish %s for booking id=%d: %v", event.Type, booking.ID, err)
	}
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// statusError объясняет, почему из текущего статуса переход невозможен
func statusError(current domain.BookingStatus) error {
	switch current {
	case domain.StatusCancelled:
		return ErrAlreadyCancelled
	case domain.StatusConfirmed:
		return ErrAlreadyConfirmed
	default:
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, current)
	}
}

func isTaxonomyError(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrAlreadyConfirmed) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, errPaymentOverdue)
}
