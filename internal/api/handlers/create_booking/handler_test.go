package create_booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/api/handlers"
	"github.com/barberly/booking-engine/internal/domain"
	createBooking "github.com/barberly/booking-engine/internal/usecase/create_booking"
	"github.com/barberly/booking-engine/pkg/logger"
)

type stubUseCase struct {
	got  *createBooking.Request
	resp *createBooking.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	s.got = req
	return s.resp, s.err
}

const validBody = `{
	"barberId": 1,
	"serviceId": 2,
	"customerId": 3,
	"customerName": "Ana",
	"bookingDate": "2025-06-02",
	"startTime": "10:00",
	"paymentMethod": "pix"
}`

func do(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))
	return rec
}

func TestHandle_Created(t *testing.T) {
	deadline := time.Date(2025, 6, 1, 18, 15, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &createBooking.Response{
		ID:               10,
		BarberID:         1,
		BookingDate:      time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:        "10:00",
		DurationMinutes:  30,
		Status:           domain.StatusAwaitingPayment,
		PaymentMethod:    domain.PaymentPix,
		PaymentExpiresAt: &deadline,
	}}

	rec := do(NewHandler(uc, domain.DefaultBookingPolicy(), logger.NewNop()), validBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(10), body.BookingID)
	assert.Equal(t, int64(10), body.ID)
	assert.Equal(t, "awaiting_payment", body.Status)
	require.NotNil(t, body.PaymentExpiresAt)
	assert.Equal(t, "2025-06-01T18:15:00Z", *body.PaymentExpiresAt)

	assert.Equal(t, "10:00", uc.got.StartTime.String())
	assert.Equal(t, domain.PaymentPix, uc.got.PaymentMethod)
	assert.Equal(t, int64(3), uc.got.CustomerID)
}

func TestHandle_MinimalBody(t *testing.T) {
	uc := &stubUseCase{resp: &createBooking.Response{
		ID:              11,
		BarberID:        1,
		ServiceID:       2,
		BookingDate:     time.Date(2030, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentCash,
	}}
	body := `{"barberId":1,"serviceId":2,"date":"2030-06-02","time":"10:00","paymentMethod":"cash"}`

	rec := do(NewHandler(uc, domain.DefaultBookingPolicy(), logger.NewNop()), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.EqualValues(t, 11, raw["bookingId"])
	assert.Equal(t, "pending", raw["status"])

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(0), uc.got.CustomerID)
	assert.Equal(t, "2030-06-02", uc.got.Date.Format(domain.DateFormat))
	assert.Equal(t, "10:00", uc.got.StartTime.String())
	assert.Equal(t, domain.PaymentCash, uc.got.PaymentMethod)
}

func TestHandle_DateInBarbershopZone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	policy := domain.DefaultBookingPolicy()
	policy.Location = loc

	uc := &stubUseCase{resp: &createBooking.Response{ID: 1, Status: domain.StatusPending}}
	body := `{"barberId":1,"serviceId":2,"date":"2030-06-02","time":"10:00","paymentMethod":"cash"}`

	rec := do(NewHandler(uc, policy, logger.NewNop()), body)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, loc, uc.got.Date.Location())
	assert.True(t, time.Date(2030, 6, 2, 0, 0, 0, 0, loc).Equal(uc.got.Date))
}

func TestHandle_SlotRejections(t *testing.T) {
	tests := []struct {
		err    error
		reason string
	}{
		{fmt.Errorf("wrapped: %w", createBooking.ErrOutsideWorkingHours), "outside_working_hours"},
		{createBooking.ErrWithinPause, "within_pause"},
		{createBooking.ErrConflictsWithExistingBooking, "conflicts_with_existing_booking"},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			rec := do(NewHandler(&stubUseCase{err: tt.err}, domain.DefaultBookingPolicy(), logger.NewNop()), validBody)
			require.Equal(t, http.StatusConflict, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.reason, body.Reason)
		})
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{`, nil, http.StatusBadRequest},
		{"missing date", `{"barberId":1,"serviceId":2,"time":"10:00","paymentMethod":"cash"}`, nil, http.StatusBadRequest},
		{"missing time", `{"barberId":1,"serviceId":2,"date":"2030-06-02","paymentMethod":"cash"}`, nil, http.StatusBadRequest},
		{"negative customer", strings.Replace(validBody, `"customerId": 3`, `"customerId": -3`, 1), nil, http.StatusBadRequest},
		{"bad time", strings.Replace(validBody, `"10:00"`, `"10h"`, 1), nil, http.StatusBadRequest},
		{"unknown payment", strings.Replace(validBody, `"pix"`, `"cheque"`, 1), nil, http.StatusBadRequest},
		{"barber not found", validBody, createBooking.ErrBarberNotFound, http.StatusNotFound},
		{"service not found", validBody, createBooking.ErrServiceNotFound, http.StatusNotFound},
		{"past date", validBody, createBooking.ErrInvalidDate, http.StatusBadRequest},
		{"too late", validBody, createBooking.ErrTooLateToBook, http.StatusBadRequest},
		{"persistence", validBody, createBooking.ErrPersistence, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(NewHandler(&stubUseCase{err: tt.err}, domain.DefaultBookingPolicy(), logger.NewNop()), tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
