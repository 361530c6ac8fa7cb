package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	getAvailableSlots "github.com/barberly/booking-engine/internal/usecase/get_available_slots"
	"github.com/barberly/booking-engine/pkg/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func router(t *testing.T) *mux.Router {
	t.Helper()

	store := memory.NewStore()
	store.AddBarber(domain.Barber{ID: 1, Name: "Rafa", Active: true})
	store.AddService(domain.Service{ID: 2, Name: "Haircut", DurationMinutes: 30, Price: 40, Active: true})
	_, err := store.Upsert(context.Background(), &domain.ScheduleDefinition{
		BarberID:  1,
		Weekday:   time.Monday,
		StartTime: "09:00",
		EndTime:   "12:00",
		Pauses:    []domain.Pause{{StartTime: "10:00", EndTime: "10:30"}},
	})
	require.NoError(t, err)

	uc := getAvailableSlots.NewUseCase(store, store, store, domain.DefaultBookingPolicy(), logger.NewNop()).
		WithTimeProvider(fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)})

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/barbers/{barberId}/availability", NewHandler(uc, domain.DefaultBookingPolicy(), logger.NewNop()).Handle)
	return r
}

func get(r *mux.Router, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHandle_Slots(t *testing.T) {
	rec := get(router(t), "/api/v1/barbers/1/availability?serviceId=2&date=2025-06-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var body AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Closed)
	assert.Equal(t, 30, body.DurationMinutes)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, body.Slots)
}

func TestHandle_ClosedDay(t *testing.T) {
	rec := get(router(t), "/api/v1/barbers/1/availability?serviceId=2&date=2025-06-03")
	require.Equal(t, http.StatusOK, rec.Code)

	var body AvailableSlotsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Closed)
	assert.NotNil(t, body.Slots)
	assert.Empty(t, body.Slots)
}

func TestHandle_Errors(t *testing.T) {
	r := router(t)

	tests := []struct {
		url  string
		want int
	}{
		{"/api/v1/barbers/x/availability?serviceId=2&date=2025-06-02", http.StatusBadRequest},
		{"/api/v1/barbers/1/availability?date=2025-06-02", http.StatusBadRequest},
		{"/api/v1/barbers/1/availability?serviceId=2", http.StatusBadRequest},
		{"/api/v1/barbers/1/availability?serviceId=2&date=02-06-2025", http.StatusBadRequest},
		{"/api/v1/barbers/9/availability?serviceId=2&date=2025-06-02", http.StatusNotFound},
		{"/api/v1/barbers/1/availability?serviceId=9&date=2025-06-02", http.StatusNotFound},
		{"/api/v1/barbers/1/availability?serviceId=2&optionId=7&date=2025-06-02", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, get(r, tt.url).Code)
		})
	}
}

func TestToUseCaseRequest_ParsesDateInBarbershopZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	policy := domain.DefaultBookingPolicy()
	policy.Location = loc

	req, err := ToUseCaseRequest(policy, 1, 2, "5", "2025-06-02")
	require.NoError(t, err)

	assert.Equal(t, loc, req.Date.Location())
	assert.True(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc).Equal(req.Date))
	assert.Equal(t, "2025-06-02", req.Date.Format(domain.DateFormat))
	require.NotNil(t, req.OptionID)
	assert.Equal(t, int64(5), *req.OptionID)

	_, err = ToUseCaseRequest(policy, 1, 2, "", "2025-13-40")
	assert.Error(t, err)
}

func TestHandle_EnvelopeShape(t *testing.T) {
	rec := get(router(t), "/api/v1/barbers/1/availability?serviceId=2&date=2025-06-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	for _, key := range []string{"date", "barberId", "serviceId", "durationMinutes", "closed", "slots"} {
		assert.Contains(t, raw, key)
	}
	assert.NotContains(t, raw, "serviceOptionId")

	var slots []string
	require.NoError(t, json.Unmarshal(raw["slots"], &slots))
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slots)
}
