package update_schedule

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barberly/booking-engine/internal/api/handlers/get_schedule"
	"github.com/barberly/booking-engine/internal/domain"
	"github.com/barberly/booking-engine/internal/infra/storage/memory"
	"github.com/barberly/booking-engine/internal/service/schedules"
	"github.com/barberly/booking-engine/internal/service/schedules/models"
	"github.com/barberly/booking-engine/pkg/logger"
)

func setup() *mux.Router {
	store := memory.NewStore()
	store.AddBarber(domain.Barber{ID: 1, Name: "Rafa", Active: true})
	svc := schedules.NewService(store, store, store, logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/barbers/{barberId}/schedule/{weekday}", NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodPut)
	r.HandleFunc("/api/v1/barbers/{barberId}/schedule/{weekday}", get_schedule.NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodGet)
	return r
}

func serve(r *mux.Router, method, url, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, url, strings.NewReader(body)))
	return rec
}

func TestHandle_UpsertThenGet(t *testing.T) {
	r := setup()

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/barbers/1/schedule/1", "").Code)

	rec := serve(r, http.MethodPut, "/api/v1/barbers/1/schedule/1",
		`{"startTime":"09:00","endTime":"18:00","pauses":[{"startTime":"12:00","endTime":"13:00"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(r, http.MethodGet, "/api/v1/barbers/1/schedule/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body models.ScheduleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "09:00", body.StartTime)
	assert.Equal(t, []models.PauseDTO{{StartTime: "12:00", EndTime: "13:00"}}, body.Pauses)
}

func TestHandle_Rejects(t *testing.T) {
	r := setup()

	tests := []struct {
		name, url, body string
		want            int
	}{
		{"bad weekday", "/api/v1/barbers/1/schedule/7", `{"startTime":"09:00","endTime":"18:00"}`, http.StatusBadRequest},
		{"bad time", "/api/v1/barbers/1/schedule/1", `{"startTime":"9","endTime":"18:00"}`, http.StatusBadRequest},
		{"inverted", "/api/v1/barbers/1/schedule/1", `{"startTime":"18:00","endTime":"09:00"}`, http.StatusBadRequest},
		{"overlapping pauses", "/api/v1/barbers/1/schedule/1",
			`{"startTime":"09:00","endTime":"18:00","pauses":[{"startTime":"12:00","endTime":"13:00"},{"startTime":"12:30","endTime":"14:00"}]}`,
			http.StatusBadRequest},
		{"unknown barber", "/api/v1/barbers/5/schedule/1", `{"startTime":"09:00","endTime":"18:00"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, serve(r, http.MethodPut, tt.url, tt.body).Code)
		})
	}
}
