package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	"github.com/barberly/booking-engine/pkg/logger"
	"github.com/barberly/booking-engine/pkg/ptr"
	"github.com/barberly/booking-engine/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// 2 июня 2025 - понедельник
var (
	monday = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	now    = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*UseCase, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.AddBarber(domain.Barber{ID: 1, Name: "Rafa", Active: true})
	store.AddService(domain.Service{
		ID:              1,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           40,
		Active:          true,
		Options: []domain.ServiceOption{
			{ID: 5, ServiceID: 1, Name: "Long hair", DurationMinutes: ptr.Ptr(60)},
		},
	})
	_, err := store.Upsert(context.Background(), &domain.ScheduleDefinition{
		BarberID:  1,
		Weekday:   time.Monday,
		StartTime: "09:00",
		EndTime:   "12:00",
		Pauses:    []domain.Pause{{StartTime: "10:00", EndTime: "10:30"}},
	})
	require.NoError(t, err)

	uc := NewUseCase(store, store, store, domain.DefaultBookingPolicy(), logger.NewNop()).
		WithTimeProvider(fixedClock{now: now})

	return uc, store
}

func slotStrings(resp *Response) []string {
	out := make([]string, len(resp.Slots))
	for i, s := range resp.Slots {
		out[i] = s.String()
	}
	return out
}

func TestExecute_ReturnsFreeSlots(t *testing.T) {
	uc, store := setup(t)
	ctx := context.Background()

	_, err := store.Create(ctx, &domain.Booking{
		BarberID:        1,
		ServiceID:       1,
		BookingDate:     monday,
		StartTime:       "09:30",
		DurationMinutes: 30,
		Status:          domain.StatusConfirmed,
	})
	require.NoError(t, err)

	resp, err := uc.Execute(ctx, &Request{BarberID: 1, ServiceID: 1, Date: monday})
	require.NoError(t, err)

	assert.False(t, resp.Closed)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, []string{"09:00", "10:30", "11:00", "11:30"}, slotStrings(resp))
}

func TestExecute_ResolvesServiceOption(t *testing.T) {
	uc, _ := setup(t)

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 1, OptionID: ptr.Ptr(int64(5)), Date: monday})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.DurationMinutes)
	assert.Equal(t, []string{"09:00", "10:30", "11:00"}, slotStrings(resp))

	_, err = uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 1, OptionID: ptr.Ptr(int64(99)), Date: monday})
	assert.ErrorIs(t, err, ErrServiceOptionNotFound)
}

func TestExecute_ClosedDay(t *testing.T) {
	uc, _ := setup(t)

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 1, Date: monday.AddDate(0, 0, 1)})
	require.NoError(t, err)

	assert.True(t, resp.Closed)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PastDateIsEmpty(t *testing.T) {
	uc, _ := setup(t)
	uc.WithTimeProvider(fixedClock{now: monday.AddDate(0, 0, 2)})

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 1, Date: monday})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_SameDayNotice(t *testing.T) {
	uc, _ := setup(t)
	uc.policy.MinNoticeMinutes = 30
	uc.WithTimeProvider(fixedClock{now: monday.Add(10*time.Hour + 15*time.Minute)})

	resp, err := uc.Execute(context.Background(), &Request{BarberID: 1, ServiceID: 1, Date: monday})
	require.NoError(t, err)

	// 10:15 + 30 минут = 10:45: остаются 11:00 и 11:30
	assert.Equal(t, []types.TimeString{"11:00", "11:30"}, resp.Slots)
}

func TestExecute_Errors(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{BarberID: 0, ServiceID: 1, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{BarberID: 1, ServiceID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{BarberID: 9, ServiceID: 1, Date: monday})
	assert.ErrorIs(t, err, ErrBarberNotFound)

	_, err = uc.Execute(ctx, &Request{BarberID: 1, ServiceID: 9, Date: monday})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
