package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	"github.com/barberly/booking-engine/internal/service/schedules/models"
	"github.com/barberly/booking-engine/pkg/logger"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	store.AddBarber(domain.Barber{ID: 1, Name: "Rafa", Active: true})
	return NewService(store, store, store, logger.NewNop())
}

func TestUpsertAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 1, time.Monday)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	saved, err := svc.Upsert(ctx, &models.UpsertScheduleRequest{
		BarberID:  1,
		Weekday:   time.Monday,
		StartTime: "09:00",
		EndTime:   "18:00",
		Pauses: []models.PauseDTO{
			{StartTime: "15:00", EndTime: "15:15"},
			{StartTime: "12:00", EndTime: "13:00"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Weekday)

	got, err := svc.Get(ctx, 1, time.Monday)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, []models.PauseDTO{
		{StartTime: "12:00", EndTime: "13:00"},
		{StartTime: "15:00", EndTime: "15:15"},
	}, got.Pauses)

	// Повторное сохранение заменяет расписание на тот же день
	replaced, err := svc.Upsert(ctx, &models.UpsertScheduleRequest{
		BarberID: 1, Weekday: time.Monday, StartTime: "10:00", EndTime: "16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, replaced.ID)
	assert.Empty(t, replaced.Pauses)
}

func TestUpsert_Rejects(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.UpsertScheduleRequest
		want error
	}{
		{"bad time", models.UpsertScheduleRequest{BarberID: 1, StartTime: "9am", EndTime: "18:00"}, ErrInvalidInput},
		{"inverted", models.UpsertScheduleRequest{BarberID: 1, StartTime: "18:00", EndTime: "09:00"}, ErrInvalidInput},
		{"pause outside", models.UpsertScheduleRequest{BarberID: 1, StartTime: "09:00", EndTime: "12:00",
			Pauses: []models.PauseDTO{{StartTime: "11:30", EndTime: "12:30"}}}, ErrInvalidInput},
		{"unknown barber", models.UpsertScheduleRequest{BarberID: 2, StartTime: "09:00", EndTime: "18:00"}, ErrBarberNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
