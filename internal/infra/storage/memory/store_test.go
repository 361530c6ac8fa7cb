package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	bookingRepo "github.com/barberly/booking-engine/internal/infra/storage/booking"
	catalogRepo "github.com/barberly/booking-engine/internal/infra/storage/catalog"
	scheduleRepo "github.com/barberly/booking-engine/internal/infra/storage/schedule"
	"github.com/barberly/booking-engine/pkg/types"
)

var day = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newBooking(barberID int64, start string, duration int, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		BarberID:        barberID,
		ServiceID:       1,
		CustomerID:      100,
		BookingDate:     day,
		StartTime:       types.TimeString(start),
		DurationMinutes: duration,
		Status:          status,
		PaymentMethod:   domain.PaymentCash,
	}
}

func TestStore_CreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first, err := store.Create(ctx, newBooking(1, "10:00", 60, domain.StatusConfirmed))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = store.Create(ctx, newBooking(1, "10:30", 30, domain.StatusPending))
	assert.ErrorIs(t, err, bookingRepo.ErrSlotNotAvailable)

	// Соседний интервал и другой барбер допустимы
	_, err = store.Create(ctx, newBooking(1, "11:00", 30, domain.StatusPending))
	assert.NoError(t, err)
	_, err = store.Create(ctx, newBooking(2, "10:30", 30, domain.StatusPending))
	assert.NoError(t, err)
}

func TestStore_CancelledBookingReleasesSlot(t *testing.T) {
	ctx := context.Background()
	now := day.Add(8 * time.Hour)
	store := NewStore()

	b, err := store.Create(ctx, newBooking(1, "10:00", 30, domain.StatusAwaitingPayment))
	require.NoError(t, err)

	reason := domain.CancelledPaymentTimeout
	require.NoError(t, store.UpdateStatus(ctx, b.ID, domain.StatusAwaitingPayment, domain.StatusCancelled, &reason, now))

	got, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.CancelledPaymentTimeout, *got.CancellationReason)
	assert.Equal(t, now, *got.CancelledAt)

	_, err = store.Create(ctx, newBooking(1, "10:00", 30, domain.StatusPending))
	assert.NoError(t, err)

	active, err := store.GetActiveByBarberAndDate(ctx, 1, day)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := store.GetByBarberWithFilter(ctx, domain.BarberBookingsFilter{BarberID: 1, Date: day, IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	now := day.Add(8 * time.Hour)
	store := NewStore()

	b, err := store.Create(ctx, newBooking(1, "10:00", 30, domain.StatusAwaitingPayment))
	require.NoError(t, err)

	require.NoError(t, store.UpdateStatus(ctx, b.ID, domain.StatusAwaitingPayment, domain.StatusConfirmed, nil, now))

	reason := domain.CancelledPaymentTimeout
	err = store.UpdateStatus(ctx, b.ID, domain.StatusAwaitingPayment, domain.StatusCancelled, &reason, now)
	assert.ErrorIs(t, err, bookingRepo.ErrStatusConflict)

	err = store.UpdateStatus(ctx, 999, domain.StatusPending, domain.StatusConfirmed, nil, now)
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)
}

func TestStore_GetOverduePayments(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	now := day.Add(9 * time.Hour)

	expired := now.Add(-time.Minute)
	fresh := now.Add(time.Minute)

	overdue := newBooking(1, "10:00", 30, domain.StatusAwaitingPayment)
	overdue.PaymentExpiresAt = &expired
	waiting := newBooking(1, "11:00", 30, domain.StatusAwaitingPayment)
	waiting.PaymentExpiresAt = &fresh

	_, err := store.Create(ctx, overdue)
	require.NoError(t, err)
	_, err = store.Create(ctx, waiting)
	require.NoError(t, err)
	_, err = store.Create(ctx, newBooking(1, "12:00", 30, domain.StatusPending))
	require.NoError(t, err)

	got, err := store.GetOverduePayments(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdue.ID, got[0].ID)
}

func TestStore_CatalogAndSchedules(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	store.AddBarber(domain.Barber{ID: 1, Name: "Rafa", Active: true})
	store.AddBarber(domain.Barber{ID: 2, Name: "Left", Active: false})
	store.AddService(domain.Service{ID: 1, Name: "Haircut", DurationMinutes: 30, Active: true})

	_, err := store.GetBarber(ctx, 1)
	assert.NoError(t, err)
	_, err = store.GetBarber(ctx, 2)
	assert.ErrorIs(t, err, catalogRepo.ErrBarberNotFound)
	_, err = store.GetService(ctx, 5)
	assert.ErrorIs(t, err, catalogRepo.ErrServiceNotFound)

	_, err = store.GetSchedule(ctx, 1, time.Monday)
	assert.ErrorIs(t, err, scheduleRepo.ErrScheduleNotFound)

	saved, err := store.Upsert(ctx, &domain.ScheduleDefinition{
		BarberID:  1,
		Weekday:   time.Monday,
		StartTime: "09:00",
		EndTime:   "18:00",
		Pauses:    []domain.Pause{{StartTime: "12:00", EndTime: "13:00"}},
	})
	require.NoError(t, err)

	got, err := store.GetSchedule(ctx, 1, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Len(t, got.Pauses, 1)

	_, err = store.Upsert(ctx, &domain.ScheduleDefinition{BarberID: 1, Weekday: time.Tuesday, StartTime: "18:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestStore_TransactionsAreExclusive(t *testing.T) {
	store := NewStore()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.DoSerializable(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				// Вложенная транзакция не блокируется
				_ = store.Do(ctx, func(context.Context) error { return nil })
				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}
