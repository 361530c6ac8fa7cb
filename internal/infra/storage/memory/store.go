// Package memory хранилище в памяти процесса: реализует контракты репозиториев
// бронирований, расписаний и каталога, а также менеджер транзакций.
// Используется как драйвер database.driver = "memory" и как тестовый двойник.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/barberly/booking-engine/internal/domain"
	bookingRepo "github.com/barberly/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	"github.com/barberly/booking-engine/internal/slots"
)

type scheduleKey struct {
	barberID int64
	weekday  time.Weekday
}

type txKey struct{}

// Store хранилище в памяти
type Store struct {
	// txMu сериализует транзакции целиком, mu защищает данные
	txMu sync.Mutex
	mu   sync.RWMutex

	barbers   map[int64]domain.Barber
	services  map[int64]domain.Service
	schedules map[scheduleKey]domain.ScheduleDefinition
	bookings  map[int64]domain.Booking

	nextBookingID  int64
	nextScheduleID int64

	now func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		barbers:   make(map[int64]domain.Barber),
		services:  make(map[int64]domain.Service),
		schedules: make(map[scheduleKey]domain.ScheduleDefinition),
		bookings:  make(map[int64]domain.Booking),
		now:       time.Now,
	}
}

// WithClock подменяет часы, которыми проставляются created_at и updated_at
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// AddBarber добавляет барбера в каталог
func (s *Store) AddBarber(b domain.Barber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.barbers[b.ID] = b
}

// AddService добавляет услугу с вариантами в каталог
func (s *Store) AddService(svc domain.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc.Options = append([]domain.ServiceOption(nil), svc.Options...)
	s.services[svc.ID] = svc
}

// Do выполняет fn эксклюзивно относительно других транзакций хранилища
// Отката нет: fn должна выполнять запись последним шагом
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// DoSerializable транзакции хранилища и так выполняются последовательно
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// GetBarber получает активного барбера по ID
func (s *Store) GetBarber(_ context.Context, id int64) (*domain.Barber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.barbers[id]
	if !ok || !b.Active {
		return nil, catalogRepo.ErrBarberNotFound
	}
	return &b, nil
}

// GetService получает активную услугу по ID вместе с вариантами
func (s *Store) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok || !svc.Active {
		return nil, catalogRepo.ErrServiceNotFound
	}
	svc.Options = append([]domain.ServiceOption(nil), svc.Options...)
	return &svc, nil
}

// GetSchedule получает расписание барбера на день недели
func (s *Store) GetSchedule(_ context.Context, barberID int64, weekday time.Weekday) (*domain.ScheduleDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sch, ok := s.schedules[scheduleKey{barberID: barberID, weekday: weekday}]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	sch.Pauses = append([]domain.Pause(nil), sch.Pauses...)
	return &sch, nil
}

// Upsert сохраняет расписание барбера на день недели
func (s *Store) Upsert(_ context.Context, schedule *domain.ScheduleDefinition) (*domain.ScheduleDefinition, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := scheduleKey{barberID: schedule.BarberID, weekday: schedule.Weekday}
	if existing, ok := s.schedules[key]; ok {
		schedule.ID = existing.ID
	} else {
		s.nextScheduleID++
		schedule.ID = s.nextScheduleID
	}

	stored := *schedule
	stored.Pauses = schedule.SortedPauses()
	s.schedules[key] = stored

	return schedule, nil
}

// Create сохраняет бронирование
// Как и exclusion constraint в PostgreSQL, отклоняет пересечение с активным бронированием барбера
func (s *Store) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.IsActive() {
		candidate, err := interval(booking)
		if err != nil {
			return nil, fmt.Errorf("%w: Create - %v", bookingRepo.ErrExecQuery, err)
		}
		for _, existing := range s.bookings {
			if !existing.IsActive() || existing.BarberID != booking.BarberID || !sameDay(existing.BookingDate, booking.BookingDate) {
				continue
			}
			other, err := interval(&existing)
			if err != nil {
				continue
			}
			if candidate.Overlaps(other) {
				return nil, fmt.Errorf("%w: Create - overlaps booking id=%d", bookingRepo.ErrSlotNotAvailable, existing.ID)
			}
		}
	}

	now := s.now()
	s.nextBookingID++
	booking.ID = s.nextBookingID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	s.bookings[booking.ID] = clone(booking)

	return booking, nil
}

// GetByID получает бронирование по ID
func (s *Store) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return ptrClone(b), nil
}

// GetActiveByBarberAndDate получает активные бронирования барбера на день
func (s *Store) GetActiveByBarberAndDate(ctx context.Context, barberID int64, date time.Time) ([]*domain.Booking, error) {
	return s.GetByBarberWithFilter(ctx, domain.BarberBookingsFilter{BarberID: barberID, Date: date})
}

// GetByBarberWithFilter получает бронирования барбера за день по времени начала
func (s *Store) GetByBarberWithFilter(_ context.Context, filter domain.BarberBookingsFilter) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.BarberID != filter.BarberID || !sameDay(b.BookingDate, filter.Date) {
			continue
		}
		if !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		result = append(result, ptrClone(b))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartTime == result[j].StartTime {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.IsBefore(result[j].StartTime)
	})

	return result, nil
}

// GetOverduePayments получает бронирования в ожидании оплаты с истекшим сроком
func (s *Store) GetOverduePayments(_ context.Context, now time.Time, limit int) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if b.Status == domain.StatusAwaitingPayment && b.PaymentExpiresAt != nil && b.PaymentExpiresAt.Before(now) {
			result = append(result, ptrClone(b))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PaymentExpiresAt.Before(*result[j].PaymentExpiresAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// UpdateStatus условно переводит бронирование из from в to
func (s *Store) UpdateStatus(
	_ context.Context,
	id int64,
	from, to domain.BookingStatus,
	reason *domain.CancellationReason,
	now time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if b.Status != from {
		return fmt.Errorf("%w: booking id=%d expected %s, got %s", bookingRepo.ErrStatusConflict, id, from, b.Status)
	}

	b.Status = to
	b.UpdatedAt = now
	if to == domain.StatusCancelled {
		if reason != nil {
			r := *reason
			b.CancellationReason = &r
		}
		t := now
		b.CancelledAt = &t
	}
	s.bookings[id] = b

	return nil
}

func interval(b *domain.Booking) (slots.Interval, error) {
	start := b.StartTime.Minutes()
	if start < 0 {
		return slots.Interval{}, fmt.Errorf("invalid start time %q", b.StartTime)
	}
	return slots.Interval{Start: start, End: start + b.DurationMinutes}, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(domain.DateFormat) == b.Format(domain.DateFormat)
}

func clone(b *domain.Booking) domain.Booking {
	c := *b
	if b.ServiceOptionID != nil {
		v := *b.ServiceOptionID
		c.ServiceOptionID = &v
	}
	if b.PaymentExpiresAt != nil {
		v := *b.PaymentExpiresAt
		c.PaymentExpiresAt = &v
	}
	if b.CustomerPhone != nil {
		v := *b.CustomerPhone
		c.CustomerPhone = &v
	}
	if b.Notes != nil {
		v := *b.Notes
		c.Notes = &v
	}
	if b.CancellationReason != nil {
		v := *b.CancellationReason
		c.CancellationReason = &v
	}
	if b.CancelledAt != nil {
		v := *b.CancelledAt
		c.CancelledAt = &v
	}
	return c
}

func ptrClone(b domain.Booking) *domain.Booking {
	c := clone(&b)
	return &c
}
