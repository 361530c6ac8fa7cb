package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/pkg/txmanager"
	"github.com/barberly/booking-engine/pkg/txmanager/txmanagertest"
)

var day = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

func newBooking() *domain.Booking {
	return &domain.Booking{
		BarberID:        1,
		ServiceID:       2,
		BookingDate:     day,
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentCash,
		BarberName:      "Ana",
		ServiceName:     "Corte",
		Price:           40,
	}
}

func bookingRow(id int64, status domain.BookingStatus) txmanagertest.Result {
	now := day.Add(8 * time.Hour)
	return txmanagertest.Result{
		Columns: bookingColumns,
		Rows: [][]driver.Value{{
			id, int64(1), int64(2), nil, int64(0), day, "10:00", int64(30),
			string(status), string(domain.PaymentCash), nil,
			"", nil, "Ana", "Corte", 40.0, nil, nil, nil, now, now,
		}},
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation", &pq.Error{Code: "23P01"}, ErrSlotNotAvailable},
		{"serialization failure", &pq.Error{Code: "40001"}, ErrSlotNotAvailable},
		{"deadlock", &pq.Error{Code: "40P01"}, ErrSlotNotAvailable},
		{"unique violation", &pq.Error{Code: "23505"}, ErrExecQuery},
		{"connection error", errors.New("connection reset"), ErrExecQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := txmanagertest.Open(txmanagertest.Result{Err: tt.err})
			repo := NewRepository(db)

			created, err := repo.Create(context.Background(), newBooking())

			assert.Nil(t, created)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_ReturnsGeneratedFields(t *testing.T) {
	createdAt := day.Add(7 * time.Hour)
	db, drv := txmanagertest.Open(txmanagertest.Result{
		Columns: []string{"id", "created_at", "updated_at"},
		Rows:    [][]driver.Value{{int64(42), createdAt, createdAt}},
	})
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), newBooking())

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, createdAt, created.CreatedAt)
	require.Len(t, drv.Queries(), 1)
	assert.Contains(t, drv.Queries()[0], "RETURNING id, created_at, updated_at")
}

func TestCreate_InsideSerializableTransaction(t *testing.T) {
	db, drv := txmanagertest.Open(txmanagertest.Result{Err: &pq.Error{Code: "23P01"}})
	repo := NewRepository(db)
	tm := txmanager.NewTransactionManager(db)

	err := tm.DoSerializable(context.Background(), func(ctx context.Context) error {
		_, err := repo.Create(ctx, newBooking())
		return err
	})

	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Equal(t, 1, drv.Rollbacks())
}

func TestUpdateStatus(t *testing.T) {
	now := day.Add(9 * time.Hour)
	reason := domain.CancelledPaymentTimeout

	tests := []struct {
		name    string
		results []txmanagertest.Result
		want    error
		queries int
	}{
		{
			name:    "row updated",
			results: []txmanagertest.Result{{RowsAffected: 1}},
			queries: 1,
		},
		{
			name:    "status already changed",
			results: []txmanagertest.Result{{RowsAffected: 0}, bookingRow(7, domain.StatusConfirmed)},
			want:    ErrStatusConflict,
			queries: 2,
		},
		{
			name:    "booking missing",
			results: []txmanagertest.Result{{RowsAffected: 0}, {Columns: bookingColumns}},
			want:    ErrBookingNotFound,
			queries: 2,
		},
		{
			name:    "serialization failure",
			results: []txmanagertest.Result{{Err: &pq.Error{Code: "40001"}}},
			want:    ErrStatusConflict,
			queries: 1,
		},
		{
			name:    "deadlock",
			results: []txmanagertest.Result{{Err: &pq.Error{Code: "40P01"}}},
			want:    ErrStatusConflict,
			queries: 1,
		},
		{
			name:    "exec failure",
			results: []txmanagertest.Result{{Err: errors.New("connection reset")}},
			want:    ErrExecQuery,
			queries: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, drv := txmanagertest.Open(tt.results...)
			repo := NewRepository(db)

			err := repo.UpdateStatus(context.Background(), 7, domain.StatusAwaitingPayment, domain.StatusCancelled, &reason, now)

			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Len(t, drv.Queries(), tt.queries)
		})
	}
}

func TestGetByID_LocksRowInsideTransaction(t *testing.T) {
	db, drv := txmanagertest.Open(bookingRow(7, domain.StatusAwaitingPayment))
	repo := NewRepository(db)
	tm := txmanager.NewTransactionManager(db)

	err := tm.Do(context.Background(), func(ctx context.Context) error {
		booking, err := repo.GetByID(ctx, 7)
		if err != nil {
			return err
		}
		assert.Equal(t, domain.StatusAwaitingPayment, booking.Status)
		assert.Equal(t, "10:00", booking.StartTime.String())
		assert.Nil(t, booking.ServiceOptionID)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, drv.Queries(), 1)
	assert.Contains(t, drv.Queries()[0], "FOR UPDATE")
}
