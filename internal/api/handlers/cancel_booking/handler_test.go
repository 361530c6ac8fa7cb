package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/events"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	"github.com/barberly/booking-engine/internal/service/bookings"
	"github.com/barberly/booking-engine/internal/service/bookings/models"
	"github.com/barberly/booking-engine/pkg/logger"
	"github.com/barberly/booking-engine/pkg/metrics"
)

func setup(t *testing.T) *mux.Router {
	t.Helper()

	store := memory.NewStore()
	_, err := store.Create(context.Background(), &domain.Booking{
		BarberID:        1,
		ServiceID:       1,
		CustomerID:      1,
		BookingDate:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00",
		DurationMinutes: 30,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentCash,
	})
	require.NoError(t, err)

	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())
	svc := bookings.NewService(store, store, events.NewBroker(), m, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodPatch)
	return r
}

func patch(r *mux.Router, url, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, url, strings.NewReader(body)))
	return rec
}

func TestHandle_Cancel(t *testing.T) {
	r := setup(t)

	assert.Equal(t, http.StatusBadRequest, patch(r, "/api/v1/bookings/1/cancel", `{"cancellationReason":"payment_expired"}`).Code)

	rec := patch(r, "/api/v1/bookings/1/cancel", `{"cancellationReason":"staff"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "cancelled", body.Status)
	assert.Equal(t, "staff", *body.CancellationReason)

	// Пустое тело допустимо, но бронирование уже отменено
	assert.Equal(t, http.StatusConflict, patch(r, "/api/v1/bookings/1/cancel", "").Code)
	assert.Equal(t, http.StatusNotFound, patch(r, "/api/v1/bookings/2/cancel", "").Code)
	assert.Equal(t, http.StatusBadRequest, patch(r, "/api/v1/bookings/x/cancel", "").Code)
}
